package platforms

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
)

func instagramConfig() shared.OAuthAppConfig {
	return shared.OAuthAppConfig{
		ClientID:     "ig_client_id",
		ClientSecret: "ig_client_secret",
		RedirectURI:  "http://localhost:3000/auth/instagram/callback",
	}
}

func TestNewInstagramPlatform(t *testing.T) {
	t.Run("with valid credentials", func(t *testing.T) {
		p, err := NewInstagramPlatform(instagramConfig(), nil, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name() != models.PlatformInstagram {
			t.Errorf("expected instagram, got %s", p.Name())
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := instagramConfig()
		cfg.ClientSecret = ""
		if _, err := NewInstagramPlatform(cfg, nil, nil); !errors.Is(err, shared.ErrMissingSecrets) {
			t.Errorf("expected ErrMissingSecrets, got %v", err)
		}
	})
}

func TestInstagramBeginAuthorization(t *testing.T) {
	p, err := NewInstagramPlatform(instagramConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	auth, err := p.BeginAuthorization(context.Background(), "ig_state")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(auth.URL, "api.instagram.com/oauth/authorize") {
		t.Errorf("expected instagram authorize URL, got %s", auth.URL)
	}
	if !strings.Contains(auth.URL, "state=ig_state") {
		t.Error("auth URL should carry state")
	}
	if !strings.Contains(auth.URL, "instagram_content_publish") {
		t.Error("auth URL should request content publish scope")
	}
	if auth.State != "ig_state" {
		t.Errorf("expected state echoed, got %s", auth.State)
	}
}

func TestBuildCaption(t *testing.T) {
	t.Run("full announcement", func(t *testing.T) {
		caption := BuildCaption(models.Announcement{
			Message:  "New video is up!",
			Title:    "Launch Day",
			Platform: "You Tube",
			URL:      "https://youtube.com/watch?v=1",
		})

		if !strings.HasPrefix(caption, "Launch Day\n\n") {
			t.Errorf("expected title prefix, got %q", caption)
		}
		if !strings.Contains(caption, "New video is up!") {
			t.Error("expected message in caption")
		}
		if !strings.Contains(caption, "#youtube") {
			t.Errorf("expected sanitized platform hashtag, got %q", caption)
		}
		if !strings.Contains(caption, "Link in bio or DM for: https://youtube.com/watch?v=1") {
			t.Error("expected link note")
		}
		if !strings.HasSuffix(caption, instagramHashtags) {
			t.Error("expected fixed promotional hashtags at the end")
		}
	})

	t.Run("message only", func(t *testing.T) {
		caption := BuildCaption(models.Announcement{Message: "hello"})
		want := "hello\n\n" + instagramHashtags
		if caption != want {
			t.Errorf("expected %q, got %q", want, caption)
		}
	})

	t.Run("platform tag lowercased and stripped", func(t *testing.T) {
		caption := BuildCaption(models.Announcement{Message: "m", Platform: "  Kick  Streaming "})
		if !strings.Contains(caption, "#kickstreaming") {
			t.Errorf("expected #kickstreaming, got %q", caption)
		}
	})
}

func TestInstagramPost(t *testing.T) {
	newPlatform := func(t *testing.T, rt http.RoundTripper) *InstagramPlatform {
		t.Helper()
		p, err := NewInstagramPlatform(instagramConfig(), &http.Client{Transport: rt}, nil)
		if err != nil {
			t.Fatalf("failed to create platform: %v", err)
		}
		return p
	}

	cred := &models.Credential{AccessToken: "ig_token", AccountID: "42", DisplayName: "creator"}
	announcement := models.Announcement{
		Message:  "New post!",
		ImageURL: "https://example.com/photo.jpg",
	}

	t.Run("two-step publish", func(t *testing.T) {
		var calls []string
		p := newPlatform(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls = append(calls, r.URL.Path)
			switch r.URL.Path {
			case "/me/media":
				return jsonResponse(http.StatusOK, `{"id":"container_1"}`), nil
			case "/me/media_publish":
				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("creation_id") != "container_1" {
					t.Errorf("expected container id forwarded, got %q", r.PostForm.Get("creation_id"))
				}
				return jsonResponse(http.StatusOK, `{"id":"media_9"}`), nil
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
				return nil, nil
			}
		}))

		receipt, err := p.Post(context.Background(), cred, announcement)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if receipt.ID != "media_9" {
			t.Errorf("expected media id, got %s", receipt.ID)
		}
		if receipt.ContainerID != "container_1" {
			t.Errorf("expected container id, got %s", receipt.ContainerID)
		}
		if !receipt.MediaAttached {
			t.Error("instagram posts always attach media")
		}
		if len(calls) != 2 {
			t.Errorf("expected exactly two API calls, got %v", calls)
		}
	})

	t.Run("publish skipped when container creation fails", func(t *testing.T) {
		var calls []string
		p := newPlatform(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls = append(calls, r.URL.Path)
			return jsonResponse(http.StatusBadRequest, `{"error":{"message":"invalid image"}}`), nil
		}))

		_, err := p.Post(context.Background(), cred, announcement)
		if !errors.Is(err, shared.ErrPlatformAPI) {
			t.Errorf("expected ErrPlatformAPI, got %v", err)
		}
		if len(calls) != 1 || calls[0] != "/me/media" {
			t.Errorf("expected only the container call, got %v", calls)
		}
		if !strings.Contains(err.Error(), "invalid image") {
			t.Errorf("expected platform message surfaced, got %v", err)
		}
	})

	t.Run("missing image rejected before network", func(t *testing.T) {
		p := newPlatform(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("no network call expected")
			return nil, nil
		}))

		_, err := p.Post(context.Background(), cred, models.Announcement{Message: "text only"})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("invalid image URL rejected before network", func(t *testing.T) {
		p := newPlatform(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("no network call expected")
			return nil, nil
		}))

		_, err := p.Post(context.Background(), cred, models.Announcement{
			Message:  "text",
			ImageURL: "http://example.com/a.png",
		})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("nil credential rejected", func(t *testing.T) {
		p := newPlatform(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("no network call expected")
			return nil, nil
		}))

		_, err := p.Post(context.Background(), nil, announcement)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestInstagramProfile(t *testing.T) {
	p, err := NewInstagramPlatform(instagramConfig(), &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Query().Get("access_token") != "ig_token" {
			t.Errorf("expected access token in query, got %q", r.URL.Query().Get("access_token"))
		}
		return jsonResponse(http.StatusOK, `{"id":"42","username":"creator","account_type":"BUSINESS","media_count":7}`), nil
	})}, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	profile, err := p.Profile(context.Background(), "ig_token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Username != "creator" || profile.MediaCount != 7 {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestInstagramValidate(t *testing.T) {
	t.Run("live token passes", func(t *testing.T) {
		p, err := NewInstagramPlatform(instagramConfig(), &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"id":"42","username":"creator"}`), nil
		})}, nil)
		if err != nil {
			t.Fatalf("failed to create platform: %v", err)
		}

		if err := p.Validate(context.Background(), "ig_token"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("revoked token fails", func(t *testing.T) {
		p, err := NewInstagramPlatform(instagramConfig(), &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, `{"error":{"message":"Invalid OAuth access token"}}`), nil
		})}, nil)
		if err != nil {
			t.Fatalf("failed to create platform: %v", err)
		}

		if err := p.Validate(context.Background(), "revoked_token"); !errors.Is(err, shared.ErrPlatformAPI) {
			t.Errorf("expected ErrPlatformAPI, got %v", err)
		}
	})
}

func TestInstagramPlatformInterface(t *testing.T) {
	p, err := NewInstagramPlatform(instagramConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}
	var _ Platform = p
}
