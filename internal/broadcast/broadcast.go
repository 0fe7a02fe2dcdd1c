// package broadcast fans a single announcement out to the enabled platforms.
//
// Platforms are attempted independently in a fixed order (discord, instagram,
// twitter). A platform's failure is folded into its result entry and never
// blocks or rolls back another platform's post; there is no atomicity across
// platforms.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/auth"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/platforms"
	"github.com/desertthunder/blastoff/internal/shared"
)

// Request is one broadcast attempt: the announcement, the platforms to
// target, and the platform-specific auxiliary inputs.
type Request struct {
	models.Announcement

	// Platforms selects which networks to post to. Unknown names produce a
	// failure entry rather than being dropped silently.
	Platforms []string `json:"platforms"`

	// WebhookURL switches Discord to the credential-less webhook path.
	WebhookURL string `json:"webhookUrl,omitempty"`
}

// webhookPoster is the Discord-only posting path through a pre-shared URL.
type webhookPoster interface {
	PostWebhook(ctx context.Context, webhookURL string, a models.Announcement) (*models.PostReceipt, error)
}

// Coordinator runs broadcasts against the flow controller's adapters and
// stored credentials.
type Coordinator struct {
	flow   *auth.Flow
	logger *log.Logger
}

// NewCoordinator creates a broadcast coordinator over a flow controller.
func NewCoordinator(flow *auth.Flow, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Coordinator{flow: flow, logger: logger}
}

// Broadcast posts the announcement to every enabled platform, in fixed order,
// and returns one entry per attempted platform. Enabling zero platforms
// yields an empty result.
func (c *Coordinator) Broadcast(ctx context.Context, sessionID string, req Request) *models.BroadcastResult {
	enabled := make(map[string]bool, len(req.Platforms))
	for _, p := range req.Platforms {
		enabled[p] = true
	}

	result := &models.BroadcastResult{Timestamp: time.Now().UTC()}

	for _, platform := range models.BroadcastOrder {
		if !enabled[platform] {
			continue
		}
		delete(enabled, platform)
		result.Entries = append(result.Entries, c.Post(ctx, sessionID, platform, req))
	}

	// Anything left over was requested but is not a platform we support.
	for _, platform := range req.Platforms {
		if enabled[platform] {
			delete(enabled, platform)
			result.Entries = append(result.Entries, models.BroadcastEntry{
				Platform: platform,
				Detail:   "unsupported platform",
			})
		}
	}

	c.logger.Info("broadcast finished",
		"attempted", len(result.Entries),
		"succeeded", result.Succeeded())
	return result
}

// Post attempts a single platform and folds any failure into the entry.
func (c *Coordinator) Post(ctx context.Context, sessionID, platform string, req Request) models.BroadcastEntry {
	entry := models.BroadcastEntry{Platform: platform}

	receipt, err := c.post(ctx, sessionID, platform, req)
	if err != nil {
		c.logger.Warn("platform post failed", "platform", platform, "err", err)
		entry.Detail = err.Error()
		return entry
	}

	entry.Success = true
	entry.Receipt = receipt
	if receipt.ID != "" {
		entry.Detail = receipt.ID
	} else {
		entry.Detail = "posted"
	}
	return entry
}

func (c *Coordinator) post(ctx context.Context, sessionID, platform string, req Request) (*models.PostReceipt, error) {
	adapter, err := c.flow.Adapter(platform)
	if err != nil {
		return nil, err
	}

	// Preconditions fail fast, before any credential lookup or network call.
	switch platform {
	case models.PlatformDiscord:
		if req.WebhookURL != "" {
			poster, ok := adapter.(webhookPoster)
			if !ok {
				return nil, fmt.Errorf("%w: webhook posting unsupported", shared.ErrNoPostingMethod)
			}
			return poster.PostWebhook(ctx, req.WebhookURL, req.Announcement)
		}
		if cred, credErr := c.flow.Credential(sessionID, platform); credErr == nil {
			return adapter.Post(ctx, cred, req.Announcement)
		}
		return nil, shared.ErrNoPostingMethod
	case models.PlatformInstagram:
		if req.ImageURL == "" {
			return nil, fmt.Errorf("%w: instagram requires an image URL", shared.ErrValidation)
		}
		if !platforms.ValidateImageURL(req.ImageURL) {
			return nil, fmt.Errorf("%w: image URL must be https and end with a supported image extension", shared.ErrValidation)
		}
	case models.PlatformTwitter:
		if err := platforms.ValidateTweet(req.Message); err != nil {
			return nil, err
		}
	}

	cred, err := c.flow.Credential(sessionID, platform)
	if err != nil {
		return nil, err
	}
	return adapter.Post(ctx, cred, req.Announcement)
}
