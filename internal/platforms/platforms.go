// package platforms defines interface Platform for posting announcements through social network APIs
//
// Discord, Instagram, Twitter
package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
)

// Platform defines the per-network adapter contract: begin an OAuth handshake,
// exchange the callback for a credential, and post one announcement.
type Platform interface {
	// Name returns the platform identifier (discord, instagram, twitter).
	Name() string

	// BeginAuthorization builds the external authorization URL for a fresh
	// handshake. OAuth2 platforms echo the supplied state; Twitter's OAuth 1.0a
	// flow replaces it with the request token and returns the paired secret.
	BeginAuthorization(ctx context.Context, state string) (*Authorization, error)

	// Exchange turns a validated callback into a Credential. OAuth2 platforms
	// use code; Twitter uses the handshake's request token plus verifier.
	Exchange(ctx context.Context, hs models.Handshake, code, verifier string) (*models.Credential, error)

	// Post publishes the announcement on behalf of the credential.
	Post(ctx context.Context, cred *models.Credential, a models.Announcement) (*models.PostReceipt, error)
}

// Authorization is the outcome of BeginAuthorization: the URL to redirect the
// user to, plus the state (and, for OAuth 1.0a, token secret) to persist as the
// pending handshake.
type Authorization struct {
	URL         string
	State       string
	TokenSecret string
}

var webhookPattern = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/\d+/[\w-]+$`)

// ValidateWebhookURL reports whether raw is a well-formed Discord webhook URL.
func ValidateWebhookURL(raw string) bool {
	return webhookPattern.MatchString(raw)
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ValidateImageURL reports whether raw is an https URL whose path ends with a
// supported image extension, case-insensitively. Query strings are allowed.
func ValidateImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// apiError converts a non-2xx platform response into an error carrying the
// status code and a snippet of the body verbatim.
func apiError(platform string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = resp.Status
	}
	return fmt.Errorf("%w: %s returned status %d: %s", shared.ErrPlatformAPI, platform, resp.StatusCode, detail)
}
