package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
)

func discordConfig() shared.OAuthAppConfig {
	return shared.OAuthAppConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://localhost:3000/auth/discord/callback",
	}
}

func TestNewDiscordPlatform(t *testing.T) {
	t.Run("with valid credentials", func(t *testing.T) {
		p, err := NewDiscordPlatform(discordConfig(), nil, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name() != models.PlatformDiscord {
			t.Errorf("expected platform name discord, got %s", p.Name())
		}
	})

	t.Run("missing client id", func(t *testing.T) {
		cfg := discordConfig()
		cfg.ClientID = ""
		if _, err := NewDiscordPlatform(cfg, nil, nil); !errors.Is(err, shared.ErrMissingSecrets) {
			t.Errorf("expected ErrMissingSecrets, got %v", err)
		}
	})

	t.Run("missing client secret", func(t *testing.T) {
		cfg := discordConfig()
		cfg.ClientSecret = ""
		if _, err := NewDiscordPlatform(cfg, nil, nil); !errors.Is(err, shared.ErrMissingSecrets) {
			t.Errorf("expected ErrMissingSecrets, got %v", err)
		}
	})
}

func TestDiscordBeginAuthorization(t *testing.T) {
	p, err := NewDiscordPlatform(discordConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	auth, err := p.BeginAuthorization(context.Background(), "test_state")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if auth.State != "test_state" {
		t.Errorf("expected state echoed, got %s", auth.State)
	}
	if !strings.Contains(auth.URL, "discord.com") {
		t.Error("auth URL should contain discord domain")
	}
	if !strings.Contains(auth.URL, "test_client_id") {
		t.Error("auth URL should contain client_id")
	}
	if !strings.Contains(auth.URL, "state=test_state") {
		t.Error("auth URL should carry the state parameter")
	}
	if !strings.Contains(auth.URL, "identify") {
		t.Error("auth URL should request identify scope")
	}
}

func TestDiscordPostWebhook(t *testing.T) {
	p, err := NewDiscordPlatform(discordConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	announcement := models.Announcement{
		Message:  "Going live now!",
		Title:    "Stream Alert",
		Platform: "Twitch",
		URL:      "https://twitch.tv/creator",
		ImageURL: "https://example.com/thumb.png",
	}

	t.Run("posts payload with embed", func(t *testing.T) {
		var received webhookPayload
		p.httpClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Host != "discord.com" {
				t.Errorf("expected discord.com host, got %s", r.URL.Host)
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &received); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			return jsonResponse(http.StatusNoContent, ""), nil
		})}

		receipt, err := p.PostWebhook(context.Background(), "https://discord.com/api/webhooks/123456789/abcDEF-123", announcement)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if receipt.Method != "webhook" {
			t.Errorf("expected webhook method, got %s", receipt.Method)
		}
		if received.Content != "Going live now!" {
			t.Errorf("expected message content, got %q", received.Content)
		}
		if received.Username != webhookUsername {
			t.Errorf("expected fixed username, got %q", received.Username)
		}
		if len(received.Embeds) != 1 {
			t.Fatalf("expected one embed, got %d", len(received.Embeds))
		}
		if received.Embeds[0].Description != "Going live now!" {
			t.Errorf("expected embed description, got %q", received.Embeds[0].Description)
		}
	})

	t.Run("surfaces non-2xx as platform error", func(t *testing.T) {
		p.httpClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"message":"invalid webhook token"}`), nil
		})}

		_, err := p.PostWebhook(context.Background(), "https://discord.com/api/webhooks/123456789/abcDEF-123", announcement)
		if !errors.Is(err, shared.ErrPlatformAPI) {
			t.Errorf("expected ErrPlatformAPI, got %v", err)
		}
		if !strings.Contains(err.Error(), "invalid webhook token") {
			t.Errorf("expected platform message surfaced, got %v", err)
		}
	})

	t.Run("rejects invalid webhook URL before network call", func(t *testing.T) {
		_, err := p.PostWebhook(context.Background(), "https://example.com/not-a-webhook", announcement)
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects empty message", func(t *testing.T) {
		_, err := p.PostWebhook(context.Background(), "https://discord.com/api/webhooks/123/abc", models.Announcement{})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestDiscordPostOAuthPlaceholder(t *testing.T) {
	p, err := NewDiscordPlatform(discordConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	t.Run("nil credential rejected", func(t *testing.T) {
		_, err := p.Post(context.Background(), nil, models.Announcement{Message: "hi"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("connected credential yields placeholder without network", func(t *testing.T) {
		cred := &models.Credential{AccessToken: "tok", DisplayName: "creator"}
		receipt, err := p.Post(context.Background(), cred, models.Announcement{Message: "hi"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if receipt.Method != "oauth" {
			t.Errorf("expected oauth method, got %s", receipt.Method)
		}
		if receipt.ID != "" {
			t.Error("placeholder receipt should have no message id")
		}
	})
}

func TestBuildEmbed(t *testing.T) {
	t.Run("full announcement", func(t *testing.T) {
		embed := BuildEmbed(models.Announcement{
			Message:  "Jump in!",
			Title:    "Live Now",
			Platform: "YouTube",
			URL:      "https://youtube.com/watch?v=1",
			ImageURL: "https://example.com/thumb.jpg",
		})

		if embed.Title != "Live Now" {
			t.Errorf("expected custom title, got %s", embed.Title)
		}
		if embed.Description != "Jump in!" {
			t.Errorf("expected message as description, got %s", embed.Description)
		}
		if embed.Color != embedColorGreen {
			t.Errorf("expected green color, got %#x", embed.Color)
		}
		if embed.Timestamp == "" {
			t.Error("expected RFC 3339 timestamp")
		}
		if embed.URL != "https://youtube.com/watch?v=1" {
			t.Error("expected embed URL set")
		}
		if len(embed.Fields) != 2 {
			t.Fatalf("expected platform and link fields, got %d", len(embed.Fields))
		}
		if embed.Fields[0].Name != "Platform" || embed.Fields[0].Value != "YouTube" {
			t.Errorf("unexpected platform field: %+v", embed.Fields[0])
		}
		if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://example.com/thumb.jpg" {
			t.Error("expected thumbnail set")
		}
	})

	t.Run("minimal announcement", func(t *testing.T) {
		embed := BuildEmbed(models.Announcement{Message: "hello"})

		if embed.Title == "" {
			t.Error("expected default title")
		}
		if len(embed.Fields) != 0 {
			t.Errorf("expected no fields, got %d", len(embed.Fields))
		}
		if embed.Thumbnail != nil {
			t.Error("expected no thumbnail")
		}
		if embed.Footer != nil {
			t.Error("expected no footer")
		}
	})
}

func TestDiscordTestWebhook(t *testing.T) {
	p, err := NewDiscordPlatform(discordConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}

	if err := p.TestWebhook(context.Background(), "not-a-url"); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDiscordPlatformInterface(t *testing.T) {
	p, err := NewDiscordPlatform(discordConfig(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create platform: %v", err)
	}
	var _ Platform = p
}
