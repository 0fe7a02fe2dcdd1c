// package client is a typed HTTP client for the blastoff API server,
// used by the CLI commands and the composer TUI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/desertthunder/blastoff/internal/broadcast"
	"github.com/desertthunder/blastoff/internal/models"
)

// Client talks to a running blastoff server. The underlying HTTP client
// carries a cookie jar so the server's session cookie, and with it the
// session's platform connections, survives across calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Jar: jar}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var info struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/", &info); err != nil {
		return err
	}
	if info.Status != "ok" {
		return fmt.Errorf("server reported status %q", info.Status)
	}
	return nil
}

// BeginAuth starts the OAuth flow and returns the URL to open in a browser.
func (c *Client) BeginAuth(ctx context.Context, platform string) (string, error) {
	var body struct {
		AuthURL string `json:"authUrl"`
	}
	if err := c.get(ctx, "/auth/"+platform, &body); err != nil {
		return "", err
	}
	return body.AuthURL, nil
}

// Status reports one platform's connection state.
func (c *Client) Status(ctx context.Context, platform string) (*models.ConnectionStatus, error) {
	var status models.ConnectionStatus
	if err := c.get(ctx, "/auth/"+platform+"/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Statuses reports every platform's connection state, in broadcast order.
func (c *Client) Statuses(ctx context.Context) ([]models.ConnectionStatus, error) {
	statuses := make([]models.ConnectionStatus, 0, len(models.BroadcastOrder))
	for _, platform := range models.BroadcastOrder {
		status, err := c.Status(ctx, platform)
		if err != nil {
			return nil, fmt.Errorf("%s status: %w", platform, err)
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// Disconnect clears the session's credential for one platform.
func (c *Client) Disconnect(ctx context.Context, platform string) error {
	var body struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, "/auth/"+platform+"/disconnect", nil, &body); err != nil {
		return err
	}
	if !body.Success {
		return fmt.Errorf("disconnect was not acknowledged")
	}
	return nil
}

// TestWebhook exercises a Discord webhook URL with a test message.
func (c *Client) TestWebhook(ctx context.Context, webhookURL string) error {
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	payload := map[string]string{"webhookUrl": webhookURL}
	if err := c.post(ctx, "/auth/discord/test-webhook", payload, &body); err != nil {
		return err
	}
	if !body.Success {
		return fmt.Errorf("webhook test failed: %s", body.Error)
	}
	return nil
}

// BlastOff broadcasts an announcement to the enabled platforms.
func (c *Client) BlastOff(ctx context.Context, req broadcast.Request) (*models.BroadcastResult, error) {
	var result models.BroadcastResult
	if err := c.post(ctx, "/blast-off", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BlastOffPlatform posts an announcement to a single platform.
func (c *Client) BlastOffPlatform(ctx context.Context, platform string, req broadcast.Request) (*models.BroadcastEntry, error) {
	var entry models.BroadcastEntry
	if err := c.post(ctx, "/blast-off/"+platform, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
