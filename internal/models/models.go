// package models defines the data model for the blastoff broadcast service
package models

import (
	"time"
)

// Platform identifiers. BroadcastOrder fixes the order in which the
// coordinator attempts platforms and in which results are reported.
const (
	PlatformDiscord   = "discord"
	PlatformInstagram = "instagram"
	PlatformTwitter   = "twitter"
)

// BroadcastOrder lists every known platform in broadcast order.
var BroadcastOrder = []string{PlatformDiscord, PlatformInstagram, PlatformTwitter}

// KnownPlatform reports whether name is one of the supported platform identifiers.
func KnownPlatform(name string) bool {
	for _, p := range BroadcastOrder {
		if p == name {
			return true
		}
	}
	return false
}

// Announcement is a single message to broadcast across platforms.
// Created by the composer, consumed once by the coordinator, never persisted.
type Announcement struct {
	Message  string `json:"message"`
	Title    string `json:"title,omitempty"`
	Platform string `json:"platform,omitempty"` // source platform tag, e.g. "Twitch"
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Credential is a stored per-platform, per-session authorization.
//
// A credential with a zero ExpiresAt never expires on its own; Twitter's
// OAuth 1.0a tokens have no expiry and stay valid until disconnect.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenSecret  string    `json:"token_secret,omitempty"` // OAuth 1.0a only
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	AccountID    string    `json:"account_id"`
	DisplayName  string    `json:"display_name"`
	ConnectedAt  time.Time `json:"connected_at"`
}

// Expired reports whether the credential's expiry has passed.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Handshake links an issued authorization URL to its eventual callback.
// Consumed exactly once; a stale or mismatched state is rejected.
type Handshake struct {
	State       string
	TokenSecret string // OAuth 1.0a request token secret
	CreatedAt   time.Time
}

// PostReceipt describes a successful post on one platform.
type PostReceipt struct {
	Platform      string    `json:"platform"`
	ID            string    `json:"id,omitempty"`     // tweet ID, Instagram media ID, Discord message ID
	Method        string    `json:"method,omitempty"` // discord: "webhook" or "oauth"
	ContainerID   string    `json:"containerId,omitempty"`
	Text          string    `json:"text,omitempty"`
	MediaAttached bool      `json:"mediaAttached"`
	PostedAt      time.Time `json:"postedAt"`
}

// BroadcastEntry is one platform's outcome within a broadcast.
type BroadcastEntry struct {
	Platform string       `json:"platform"`
	Success  bool         `json:"success"`
	Detail   string       `json:"detail"`
	Receipt  *PostReceipt `json:"receipt,omitempty"`
}

// BroadcastResult is the ordered sequence of per-platform outcomes,
// one entry per attempted platform in BroadcastOrder.
type BroadcastResult struct {
	Entries   []BroadcastEntry `json:"entries"`
	Timestamp time.Time        `json:"timestamp"`
}

// Succeeded counts entries that posted successfully.
func (r *BroadcastResult) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.Success {
			n++
		}
	}
	return n
}

// ConnectionStatus describes a platform's auth state for one session.
type ConnectionStatus struct {
	Platform    string    `json:"platform"`
	Connected   bool      `json:"connected"`
	AccountID   string    `json:"accountId,omitempty"`
	DisplayName string    `json:"user,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
	ConnectedAt time.Time `json:"connectedAt,omitzero"`
}
