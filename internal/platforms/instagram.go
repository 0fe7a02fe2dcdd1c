// Instagram implementation of [Platform]
//
// Authentication via the Basic Display OAuth flow, posting via the Graph API
// two-step container publish. Shapes from https://developers.facebook.com/docs/instagram
package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
)

const (
	instagramOAuthBase = "https://api.instagram.com"
	instagramGraphBase = "https://graph.instagram.com"
	facebookGraphBase  = "https://graph.facebook.com"

	instagramScopes   = "user_profile,user_media,instagram_content_publish"
	instagramHashtags = "#content #creator #socialmedia #blastoff"
)

// InstagramProfile represents an Instagram user profile.
type InstagramProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AccountType string `json:"account_type"`
	MediaCount  int    `json:"media_count"`
}

type instagramToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      any    `json:"user_id"`
}

type mediaContainer struct {
	ID string `json:"id"`
}

// InstagramPlatform implements [Platform] for Instagram.
type InstagramPlatform struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	logger       *log.Logger
}

// NewInstagramPlatform creates an Instagram adapter from app credentials.
// Returns [shared.ErrMissingSecrets] when client credentials are absent.
func NewInstagramPlatform(cfg shared.OAuthAppConfig, client *http.Client, logger *log.Logger) (*InstagramPlatform, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: instagram client_id and client_secret required", shared.ErrMissingSecrets)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &InstagramPlatform{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		httpClient:   client,
		logger:       logger.With("platform", models.PlatformInstagram),
	}, nil
}

func (i *InstagramPlatform) Name() string {
	return models.PlatformInstagram
}

// BeginAuthorization returns the Instagram consent URL carrying the given state.
//
// Built by hand rather than with oauth2.Config because Instagram expects a
// comma-separated scope list.
func (i *InstagramPlatform) BeginAuthorization(ctx context.Context, state string) (*Authorization, error) {
	params := url.Values{}
	params.Set("client_id", i.clientID)
	params.Set("redirect_uri", i.redirectURI)
	params.Set("scope", instagramScopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return &Authorization{
		URL:   instagramOAuthBase + "/oauth/authorize?" + params.Encode(),
		State: state,
	}, nil
}

// Exchange swaps the code for a short-lived token, upgrades it to a
// long-lived one, and resolves the user's profile.
func (i *InstagramPlatform) Exchange(ctx context.Context, hs models.Handshake, code, verifier string) (*models.Credential, error) {
	form := url.Values{}
	form.Set("client_id", i.clientID)
	form.Set("client_secret", i.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", i.redirectURI)
	form.Set("code", code)

	var short instagramToken
	if err := i.postForm(ctx, instagramOAuthBase+"/oauth/access_token", form, &short); err != nil {
		return nil, fmt.Errorf("%w: instagram: %v", shared.ErrAuthExchange, err)
	}

	longLived, err := i.longLivedToken(ctx, short.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: instagram long-lived token: %v", shared.ErrAuthExchange, err)
	}

	profile, err := i.Profile(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		AccessToken: longLived.AccessToken,
		AccountID:   profile.ID,
		DisplayName: profile.Username,
		ConnectedAt: time.Now().UTC(),
	}
	if longLived.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(longLived.ExpiresIn) * time.Second)
	}
	return cred, nil
}

// longLivedToken exchanges a short-lived token for a ~60 day one.
func (i *InstagramPlatform) longLivedToken(ctx context.Context, accessToken string) (*instagramToken, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_exchange_token")
	params.Set("client_secret", i.clientSecret)
	params.Set("access_token", accessToken)

	var token instagramToken
	if err := i.getJSON(ctx, facebookGraphBase+"/access_token?"+params.Encode(), &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Profile retrieves the authenticated user's profile. Also used as the
// liveness check behind the status endpoint: a failed fetch means the stored
// token is no longer usable.
func (i *InstagramPlatform) Profile(ctx context.Context, accessToken string) (*InstagramProfile, error) {
	params := url.Values{}
	params.Set("fields", "id,username,account_type,media_count")
	params.Set("access_token", accessToken)

	var profile InstagramProfile
	if err := i.getJSON(ctx, instagramGraphBase+"/me?"+params.Encode(), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate checks a stored access token live against the API. A failed
// profile fetch means the token was revoked or invalidated upstream even if
// its recorded expiry has not passed.
func (i *InstagramPlatform) Validate(ctx context.Context, accessToken string) error {
	_, err := i.Profile(ctx, accessToken)
	return err
}

// Post publishes the announcement: create a media container bound to the
// user's token, then publish it by id. Both steps must succeed; a failed
// container creation means publish is never attempted.
func (i *InstagramPlatform) Post(ctx context.Context, cred *models.Credential, a models.Announcement) (*models.PostReceipt, error) {
	if cred == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if a.Message == "" {
		return nil, fmt.Errorf("%w: message is required", shared.ErrValidation)
	}
	if a.ImageURL == "" {
		return nil, fmt.Errorf("%w: instagram posts require a publicly accessible image URL", shared.ErrValidation)
	}
	if !ValidateImageURL(a.ImageURL) {
		return nil, fmt.Errorf("%w: image URL must be https and end with a supported image extension", shared.ErrValidation)
	}

	caption := BuildCaption(a)

	container, err := i.createContainer(ctx, cred.AccessToken, a.ImageURL, caption)
	if err != nil {
		return nil, err
	}

	media, err := i.publishContainer(ctx, cred.AccessToken, container.ID)
	if err != nil {
		return nil, err
	}

	return &models.PostReceipt{
		Platform:      models.PlatformInstagram,
		ID:            media.ID,
		ContainerID:   container.ID,
		Text:          caption,
		MediaAttached: true,
		PostedAt:      time.Now().UTC(),
	}, nil
}

func (i *InstagramPlatform) createContainer(ctx context.Context, accessToken, imageURL, caption string) (*mediaContainer, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", accessToken)

	var container mediaContainer
	if err := i.postForm(ctx, instagramGraphBase+"/me/media", form, &container); err != nil {
		return nil, err
	}
	if container.ID == "" {
		return nil, fmt.Errorf("%w: instagram did not return a container id", shared.ErrPlatformAPI)
	}
	return &container, nil
}

func (i *InstagramPlatform) publishContainer(ctx context.Context, accessToken, containerID string) (*mediaContainer, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", accessToken)

	var media mediaContainer
	if err := i.postForm(ctx, instagramGraphBase+"/me/media_publish", form, &media); err != nil {
		return nil, err
	}
	return &media, nil
}

func (i *InstagramPlatform) postForm(ctx context.Context, endpoint string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(models.PlatformInstagram, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (i *InstagramPlatform) getJSON(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(models.PlatformInstagram, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// BuildCaption assembles the Instagram caption: optional title, the message,
// a sanitized source-platform hashtag, a link-in-bio note, and the fixed
// promotional hashtags.
func BuildCaption(a models.Announcement) string {
	var b strings.Builder

	if a.Title != "" {
		b.WriteString(a.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(a.Message)

	if a.Platform != "" {
		tag := strings.ToLower(a.Platform)
		tag = strings.Join(strings.Fields(tag), "")
		if tag != "" {
			b.WriteString("\n\n#")
			b.WriteString(tag)
		}
	}

	if a.URL != "" {
		b.WriteString("\n\nLink in bio or DM for: ")
		b.WriteString(a.URL)
	}

	b.WriteString("\n\n")
	b.WriteString(instagramHashtags)

	return b.String()
}
