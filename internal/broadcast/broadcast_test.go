package broadcast

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/blastoff/internal/auth"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/session"
	"github.com/desertthunder/blastoff/internal/shared"
	tu "github.com/desertthunder/blastoff/internal/testing"
)

// webhookMock extends the platform mock with Discord's webhook posting path.
type webhookMock struct {
	tu.MockPlatform
	WebhookCalls int
	WebhookURL   string
	WebhookErr   error
}

func (w *webhookMock) PostWebhook(ctx context.Context, webhookURL string, a models.Announcement) (*models.PostReceipt, error) {
	w.WebhookCalls++
	w.WebhookURL = webhookURL
	if w.WebhookErr != nil {
		return nil, w.WebhookErr
	}
	return &models.PostReceipt{Platform: models.PlatformDiscord, Method: "webhook", Text: a.Message}, nil
}

type fixture struct {
	discord   *webhookMock
	instagram *tu.MockPlatform
	twitter   *tu.MockPlatform
	store     session.Store
	coord     *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		discord:   &webhookMock{MockPlatform: tu.MockPlatform{PlatformName: models.PlatformDiscord}},
		instagram: &tu.MockPlatform{PlatformName: models.PlatformInstagram},
		twitter: &tu.MockPlatform{
			PlatformName: models.PlatformTwitter,
			Receipt:      &models.PostReceipt{Platform: models.PlatformTwitter, ID: "1500"},
		},
		store: session.NewMemoryStore(),
	}

	flow := auth.NewFlow(f.store, shared.NewLogger(nil), f.discord, f.instagram, f.twitter)
	f.coord = NewCoordinator(flow, shared.NewLogger(nil))
	return f
}

func (f *fixture) connect(platform string) {
	_ = f.store.Set("s1", platform, &models.Credential{AccessToken: "tok", DisplayName: "creator"})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("entries follow fixed platform order", func(t *testing.T) {
		f := newFixture()
		f.connect(models.PlatformDiscord)
		f.connect(models.PlatformInstagram)
		f.connect(models.PlatformTwitter)

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "hello", ImageURL: "https://example.com/a.jpg"},
			Platforms:    []string{models.PlatformTwitter, models.PlatformDiscord, models.PlatformInstagram},
		})

		if len(result.Entries) != 3 {
			t.Fatalf("expected three entries, got %d", len(result.Entries))
		}
		for i, want := range models.BroadcastOrder {
			if result.Entries[i].Platform != want {
				t.Errorf("entry %d: expected %s, got %s", i, want, result.Entries[i].Platform)
			}
		}
	})

	t.Run("unauthenticated discord and connected twitter", func(t *testing.T) {
		f := newFixture()
		f.connect(models.PlatformTwitter)

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "Going live!"},
			Platforms:    []string{models.PlatformDiscord, models.PlatformTwitter},
		})

		if len(result.Entries) != 2 {
			t.Fatalf("expected two entries, got %d", len(result.Entries))
		}

		discord := result.Entries[0]
		if discord.Success || discord.Detail != "no posting method" {
			t.Errorf("unexpected discord entry %+v", discord)
		}

		twitter := result.Entries[1]
		if !twitter.Success || twitter.Detail != "1500" {
			t.Errorf("unexpected twitter entry %+v", twitter)
		}
		if result.Succeeded() != 1 {
			t.Errorf("expected one success, got %d", result.Succeeded())
		}
	})

	t.Run("missing image fails instagram before the adapter", func(t *testing.T) {
		f := newFixture()
		f.connect(models.PlatformInstagram)
		f.connect(models.PlatformTwitter)

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "no photo today"},
			Platforms:    []string{models.PlatformInstagram, models.PlatformTwitter},
		})

		instagram := result.Entries[0]
		if instagram.Success {
			t.Error("expected instagram validation failure")
		}
		if !strings.Contains(instagram.Detail, "image URL") {
			t.Errorf("unexpected detail %q", instagram.Detail)
		}
		if f.instagram.PostCalls != 0 {
			t.Errorf("instagram adapter should not be called, got %d calls", f.instagram.PostCalls)
		}

		if !result.Entries[1].Success {
			t.Errorf("twitter should still post, got %+v", result.Entries[1])
		}
	})

	t.Run("webhook path needs no credential", func(t *testing.T) {
		f := newFixture()

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "ping"},
			Platforms:    []string{models.PlatformDiscord},
			WebhookURL:   "https://discord.com/api/webhooks/123456789/abcDEF-123",
		})

		entry := result.Entries[0]
		if !entry.Success {
			t.Fatalf("expected webhook success, got %+v", entry)
		}
		if f.discord.WebhookCalls != 1 {
			t.Errorf("expected one webhook call, got %d", f.discord.WebhookCalls)
		}
		if f.discord.WebhookURL != "https://discord.com/api/webhooks/123456789/abcDEF-123" {
			t.Errorf("unexpected webhook URL %q", f.discord.WebhookURL)
		}
		if f.discord.PostCalls != 0 {
			t.Error("OAuth posting path should not be used when a webhook is given")
		}
	})

	t.Run("one failure never blocks siblings", func(t *testing.T) {
		f := newFixture()
		f.connect(models.PlatformInstagram)
		f.connect(models.PlatformTwitter)
		f.instagram.PostErr = shared.ErrPlatformAPI

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "hello", ImageURL: "https://example.com/a.jpg"},
			Platforms:    []string{models.PlatformInstagram, models.PlatformTwitter},
		})

		if result.Entries[0].Success {
			t.Error("expected instagram failure")
		}
		if !result.Entries[1].Success {
			t.Errorf("twitter should still succeed, got %+v", result.Entries[1])
		}
		if f.twitter.PostCalls != 1 {
			t.Errorf("expected twitter posted once, got %d", f.twitter.PostCalls)
		}
	})

	t.Run("sequential broadcasts re-post independently", func(t *testing.T) {
		f := newFixture()
		f.connect(models.PlatformTwitter)

		req := Request{
			Announcement: models.Announcement{Message: "again"},
			Platforms:    []string{models.PlatformTwitter},
		}

		first := f.coord.Broadcast(ctx, "s1", req)
		second := f.coord.Broadcast(ctx, "s1", req)

		if !first.Entries[0].Success || !second.Entries[0].Success {
			t.Error("both broadcasts should succeed")
		}
		if f.twitter.PostCalls != 2 {
			t.Errorf("expected two independent posts, got %d", f.twitter.PostCalls)
		}
	})

	t.Run("unknown platform gets a failure entry", func(t *testing.T) {
		f := newFixture()

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "hi"},
			Platforms:    []string{"myspace"},
		})

		if len(result.Entries) != 1 {
			t.Fatalf("expected one entry, got %d", len(result.Entries))
		}
		entry := result.Entries[0]
		if entry.Success || entry.Detail != "unsupported platform" {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("zero platforms yields empty result", func(t *testing.T) {
		f := newFixture()

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "hi"},
		})
		if len(result.Entries) != 0 {
			t.Errorf("expected no entries, got %d", len(result.Entries))
		}
	})

	t.Run("expired credential reported as entry failure", func(t *testing.T) {
		f := newFixture()
		_ = f.store.Set("s1", models.PlatformInstagram, &models.Credential{
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(-time.Hour),
		})

		result := f.coord.Broadcast(ctx, "s1", Request{
			Announcement: models.Announcement{Message: "hi", ImageURL: "https://example.com/a.png"},
			Platforms:    []string{models.PlatformInstagram},
		})

		entry := result.Entries[0]
		if entry.Success {
			t.Error("expected failure for expired credential")
		}
		if !strings.Contains(entry.Detail, "expired") {
			t.Errorf("unexpected detail %q", entry.Detail)
		}
	})
}

func TestSinglePlatformPost(t *testing.T) {
	f := newFixture()
	f.connect(models.PlatformTwitter)

	entry := f.coord.Post(context.Background(), "s1", models.PlatformTwitter, Request{
		Announcement: models.Announcement{Message: "solo"},
	})

	if !entry.Success || entry.Detail != "1500" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Receipt == nil || entry.Receipt.ID != "1500" {
		t.Errorf("expected receipt attached, got %+v", entry.Receipt)
	}
}
