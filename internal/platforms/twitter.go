// Twitter implementation of [Platform]
//
// OAuth 1.0a three-legged flow via dghubble/oauth1; tweets posted through the
// v2 create-tweet endpoint, media through the v1.1 upload endpoint.
package platforms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
	"github.com/dghubble/oauth1"
	oauth1twitter "github.com/dghubble/oauth1/twitter"
)

const (
	twitterAPIBase   = "https://api.twitter.com"
	twitterUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	tweetMaxLength   = 280
	maxMediaDownload = 5 << 20 // 5 MiB cap on best-effort image downloads
)

// TwitterAccount represents the authenticated account identity.
type TwitterAccount struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type mediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

// TwitterPlatform implements [Platform] for Twitter using OAuth 1.0a.
type TwitterPlatform struct {
	config     *oauth1.Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewTwitterPlatform creates a Twitter adapter from consumer credentials.
// Returns [shared.ErrMissingSecrets] when consumer credentials are absent.
func NewTwitterPlatform(cfg shared.TwitterAppConfig, client *http.Client, logger *log.Logger) (*TwitterPlatform, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: twitter api_key and api_secret required", shared.ErrMissingSecrets)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth1.Config{
		ConsumerKey:    cfg.APIKey,
		ConsumerSecret: cfg.APISecret,
		CallbackURL:    cfg.RedirectURI,
		Endpoint:       oauth1twitter.AuthorizeEndpoint,
	}

	return &TwitterPlatform{
		config:     config,
		httpClient: client,
		logger:     logger.With("platform", models.PlatformTwitter),
	}, nil
}

func (t *TwitterPlatform) Name() string {
	return models.PlatformTwitter
}

// BeginAuthorization obtains a temporary request token from Twitter. OAuth
// 1.0a has no separate state parameter, so the request token doubles as the
// handshake state and its secret rides along for the exchange.
func (t *TwitterPlatform) BeginAuthorization(ctx context.Context, state string) (*Authorization, error) {
	requestToken, requestSecret, err := t.config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("%w: twitter request token: %v", shared.ErrAuthExchange, err)
	}

	authURL, err := t.config.AuthorizationURL(requestToken)
	if err != nil {
		return nil, fmt.Errorf("%w: twitter authorization URL: %v", shared.ErrAuthExchange, err)
	}

	return &Authorization{
		URL:         authURL.String(),
		State:       requestToken,
		TokenSecret: requestSecret,
	}, nil
}

// Exchange swaps the request token and verifier for access tokens, then
// resolves the account identity. OAuth 1.0a credentials carry no expiry.
func (t *TwitterPlatform) Exchange(ctx context.Context, hs models.Handshake, code, verifier string) (*models.Credential, error) {
	if verifier == "" {
		return nil, fmt.Errorf("%w: missing oauth_verifier", shared.ErrMissingCode)
	}

	accessToken, accessSecret, err := t.config.AccessToken(hs.State, hs.TokenSecret, verifier)
	if err != nil {
		return nil, fmt.Errorf("%w: twitter: %v", shared.ErrAuthExchange, err)
	}

	account, err := t.VerifyCredentials(ctx, accessToken, accessSecret)
	if err != nil {
		return nil, err
	}

	return &models.Credential{
		AccessToken: accessToken,
		TokenSecret: accessSecret,
		AccountID:   account.ID,
		DisplayName: account.ScreenName,
		ConnectedAt: time.Now().UTC(),
	}, nil
}

// VerifyCredentials fetches the account behind an access token pair.
func (t *TwitterPlatform) VerifyCredentials(ctx context.Context, accessToken, tokenSecret string) (*TwitterAccount, error) {
	client := t.signedClient(ctx, accessToken, tokenSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, twitterAPIBase+"/1.1/account/verify_credentials.json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(models.PlatformTwitter, resp)
	}

	var account TwitterAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &account, nil
}

// ValidateTweet rejects empty or over-length tweet text before any network call.
func ValidateTweet(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message is required", shared.ErrValidation)
	}
	if utf8.RuneCountInString(text) > tweetMaxLength {
		return fmt.Errorf("%w: tweet exceeds %d character limit", shared.ErrValidation, tweetMaxLength)
	}
	return nil
}

// Post publishes the announcement as a tweet. An image URL triggers a
// best-effort media upload: on failure the tweet is posted text-only and the
// receipt's MediaAttached stays false.
func (t *TwitterPlatform) Post(ctx context.Context, cred *models.Credential, a models.Announcement) (*models.PostReceipt, error) {
	if cred == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if err := ValidateTweet(a.Message); err != nil {
		return nil, err
	}

	client := t.signedClient(ctx, cred.AccessToken, cred.TokenSecret)

	var mediaIDs []string
	if a.ImageURL != "" {
		mediaID, err := t.uploadMedia(ctx, client, a.ImageURL)
		if err != nil {
			// Degrade to text-only rather than failing the whole tweet.
			t.logger.Warn("media upload failed, posting text-only", "err", err)
		} else {
			mediaIDs = append(mediaIDs, mediaID)
		}
	}

	tweet, err := t.createTweet(ctx, client, a.Message, mediaIDs)
	if err != nil {
		return nil, err
	}

	return &models.PostReceipt{
		Platform:      models.PlatformTwitter,
		ID:            tweet.Data.ID,
		Text:          tweet.Data.Text,
		MediaAttached: len(mediaIDs) > 0,
		PostedAt:      time.Now().UTC(),
	}, nil
}

func (t *TwitterPlatform) createTweet(ctx context.Context, client *http.Client, text string, mediaIDs []string) (*tweetResponse, error) {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterAPIBase+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(models.PlatformTwitter, resp)
	}

	var tweet tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweet); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tweet, nil
}

// uploadMedia downloads the image and uploads it base64-encoded to the v1.1
// media endpoint, returning the media id for attachment.
func (t *TwitterPlatform) uploadMedia(ctx context.Context, client *http.Client, imageURL string) (string, error) {
	if !ValidateImageURL(imageURL) {
		return "", fmt.Errorf("%w: unsupported image URL", shared.ErrValidation)
	}

	data, err := t.downloadImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("media_data", base64.StdEncoding.EncodeToString(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterUploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiError(models.PlatformTwitter, resp)
	}

	var upload mediaUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if upload.MediaIDString == "" {
		return "", fmt.Errorf("%w: no media id in upload response", shared.ErrPlatformAPI)
	}
	return upload.MediaIDString, nil
}

func (t *TwitterPlatform) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	// Read one byte past the cap so an oversize image is detected instead of
	// uploading a truncated prefix.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaDownload+1))
	if err != nil {
		return nil, fmt.Errorf("image read failed: %w", err)
	}
	if len(data) > maxMediaDownload {
		return nil, fmt.Errorf("%w: image exceeds %d byte limit", shared.ErrValidation, maxMediaDownload)
	}
	return data, nil
}

// signedClient builds an OAuth 1.0a signing client over the shared transport.
func (t *TwitterPlatform) signedClient(ctx context.Context, accessToken, tokenSecret string) *http.Client {
	ctx = context.WithValue(ctx, oauth1.HTTPClient, t.httpClient)
	return t.config.Client(ctx, oauth1.NewToken(accessToken, tokenSecret))
}
