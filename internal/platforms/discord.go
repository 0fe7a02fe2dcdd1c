// Discord implementation of [Platform]
//
// Supports two posting paths: credential-less webhooks and an OAuth path that
// is scaffolded only (channel posting needs bot permissions this app doesn't
// request). API shapes from https://discord.com/developers/docs
package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
	"golang.org/x/oauth2"
)

const (
	discordAPIBase  = "https://discord.com/api/v10"
	discordAuthURL  = discordAPIBase + "/oauth2/authorize"
	discordTokenURL = discordAPIBase + "/oauth2/token"

	webhookUsername = "Creator Blast Off"
	webhookAvatar   = "https://cdn.discordapp.com/attachments/placeholder.png"
	embedColorGreen = 0x00ff00
)

// DiscordUser represents the subset of a Discord user profile this app reads.
type DiscordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
}

// DiscordGuild represents a Discord server the user belongs to.
type DiscordGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions int64  `json:"permissions,string"`
}

// webhookEmbed is the rich embed attached to webhook announcements.
type webhookEmbed struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	URL         string          `json:"url,omitempty"`
	Color       int             `json:"color,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
	Fields      []embedField    `json:"fields,omitempty"`
	Thumbnail   *embedThumbnail `json:"thumbnail,omitempty"`
	Footer      *embedFooter    `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type webhookPayload struct {
	Content   string         `json:"content"`
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []webhookEmbed `json:"embeds,omitempty"`
}

// DiscordPlatform implements [Platform] for Discord.
type DiscordPlatform struct {
	config     *oauth2.Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewDiscordPlatform creates a Discord adapter from app credentials.
// Returns [shared.ErrMissingSecrets] when client credentials are absent.
func NewDiscordPlatform(cfg shared.OAuthAppConfig, client *http.Client, logger *log.Logger) (*DiscordPlatform, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: discord client_id and client_secret required", shared.ErrMissingSecrets)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{"identify", "guilds"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  discordAuthURL,
			TokenURL: discordTokenURL,
		},
	}

	return &DiscordPlatform{
		config:     config,
		httpClient: client,
		logger:     logger.With("platform", models.PlatformDiscord),
	}, nil
}

func (d *DiscordPlatform) Name() string {
	return models.PlatformDiscord
}

// BeginAuthorization returns the Discord consent URL carrying the given state.
func (d *DiscordPlatform) BeginAuthorization(ctx context.Context, state string) (*Authorization, error) {
	return &Authorization{
		URL:   d.config.AuthCodeURL(state),
		State: state,
	}, nil
}

// Exchange swaps the authorization code for tokens and resolves the user's identity.
func (d *DiscordPlatform) Exchange(ctx context.Context, hs models.Handshake, code, verifier string) (*models.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)

	token, err := d.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: discord: %v", shared.ErrAuthExchange, err)
	}

	user, err := d.UserProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	return &models.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		AccountID:    user.ID,
		DisplayName:  user.Username,
		ConnectedAt:  time.Now().UTC(),
	}, nil
}

// UserProfile retrieves the authenticated user's Discord identity.
func (d *DiscordPlatform) UserProfile(ctx context.Context, accessToken string) (*DiscordUser, error) {
	var user DiscordUser
	if err := d.doGet(ctx, "/users/@me", accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserGuilds retrieves the servers the authenticated user belongs to.
func (d *DiscordPlatform) UserGuilds(ctx context.Context, accessToken string) ([]DiscordGuild, error) {
	var guilds []DiscordGuild
	if err := d.doGet(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

func (d *DiscordPlatform) doGet(ctx context.Context, endpoint, accessToken string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordAPIBase+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(models.PlatformDiscord, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Post handles the OAuth posting path. Channel posting requires bot
// permissions this app doesn't request, so a connected credential yields a
// placeholder success without any network call.
func (d *DiscordPlatform) Post(ctx context.Context, cred *models.Credential, a models.Announcement) (*models.PostReceipt, error) {
	if cred == nil {
		return nil, shared.ErrNotAuthenticated
	}

	d.logger.Warn("oauth channel posting not available without bot permissions, reporting placeholder")
	return &models.PostReceipt{
		Platform: models.PlatformDiscord,
		Method:   "oauth",
		Text:     a.Message,
		PostedAt: time.Now().UTC(),
	}, nil
}

// PostWebhook publishes the announcement through a pre-shared webhook URL,
// attaching a rich embed built from the announcement's enhancement fields.
func (d *DiscordPlatform) PostWebhook(ctx context.Context, webhookURL string, a models.Announcement) (*models.PostReceipt, error) {
	if a.Message == "" {
		return nil, fmt.Errorf("%w: message is required", shared.ErrValidation)
	}
	if !ValidateWebhookURL(webhookURL) {
		return nil, fmt.Errorf("%w: invalid webhook URL", shared.ErrValidation)
	}

	payload := webhookPayload{
		Content:   a.Message,
		Username:  webhookUsername,
		AvatarURL: webhookAvatar,
		Embeds:    []webhookEmbed{BuildEmbed(a)},
	}

	if err := d.sendWebhook(ctx, webhookURL, payload); err != nil {
		return nil, err
	}

	return &models.PostReceipt{
		Platform: models.PlatformDiscord,
		Method:   "webhook",
		Text:     a.Message,
		PostedAt: time.Now().UTC(),
	}, nil
}

// TestWebhook validates the URL format and sends a fixed test message.
func (d *DiscordPlatform) TestWebhook(ctx context.Context, webhookURL string) error {
	if !ValidateWebhookURL(webhookURL) {
		return fmt.Errorf("%w: invalid webhook URL format", shared.ErrValidation)
	}

	payload := webhookPayload{
		Content:  "✅ Test message from Blast Off - webhook is working!",
		Username: "Blast Off Test",
	}
	return d.sendWebhook(ctx, webhookURL, payload)
}

func (d *DiscordPlatform) sendWebhook(ctx context.Context, webhookURL string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(models.PlatformDiscord, resp)
	}
	return nil
}

// BuildEmbed assembles the announcement embed: title, description, green
// accent color, RFC 3339 timestamp, and optional platform/link/thumbnail parts.
func BuildEmbed(a models.Announcement) webhookEmbed {
	title := a.Title
	if title == "" {
		title = "🚀 New Content Alert!"
	}

	embed := webhookEmbed{
		Title:       title,
		Description: a.Message,
		Color:       embedColorGreen,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	if a.Platform != "" {
		embed.Fields = append(embed.Fields, embedField{Name: "Platform", Value: a.Platform, Inline: true})
	}
	if a.URL != "" {
		embed.URL = a.URL
		embed.Fields = append(embed.Fields, embedField{
			Name:   "Direct Link",
			Value:  fmt.Sprintf("[Click to Join](%s)", a.URL),
			Inline: true,
		})
	}
	if a.ImageURL != "" {
		embed.Thumbnail = &embedThumbnail{URL: a.ImageURL}
	}

	return embed
}
