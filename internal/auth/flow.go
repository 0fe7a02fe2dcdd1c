// package auth implements the OAuth flow controller shared by all platforms.
//
// The flow is a small state machine per session/platform pair: no credential,
// a pending handshake, or a committed credential. Begin issues the external
// authorization URL and records the handshake; Complete consumes it exactly
// once and commits the exchanged credential to the session store; Status may
// downgrade an expired credential but never upgrades; Disconnect clears it.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/platforms"
	"github.com/desertthunder/blastoff/internal/session"
	"github.com/desertthunder/blastoff/internal/shared"
)

// handshakeTTL bounds how long an issued authorization URL stays redeemable.
const handshakeTTL = 10 * time.Minute

// Flow coordinates OAuth handshakes and credential storage across platforms.
type Flow struct {
	adapters map[string]platforms.Platform
	store    session.Store
	logger   *log.Logger

	mu      sync.Mutex
	pending map[handshakeKey]models.Handshake
}

type handshakeKey struct {
	session  string
	platform string
}

// NewFlow creates a flow controller over the given store and adapters.
// Adapters are registered under their Name(); a platform with no adapter is
// reported as not configured.
func NewFlow(store session.Store, logger *log.Logger, adapters ...platforms.Platform) *Flow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	registered := make(map[string]platforms.Platform, len(adapters))
	for _, a := range adapters {
		if a != nil {
			registered[a.Name()] = a
		}
	}

	return &Flow{
		adapters: registered,
		store:    store,
		logger:   logger,
		pending:  make(map[handshakeKey]models.Handshake),
	}
}

// Adapter returns the registered adapter for a platform.
// Returns [shared.ErrNotConfigured] when the platform has no adapter.
func (f *Flow) Adapter(platform string) (platforms.Platform, error) {
	a, ok := f.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotConfigured, platform)
	}
	return a, nil
}

// Begin starts an authorization attempt: generates a fresh state token, asks
// the adapter for its consent URL, and records the handshake keyed by
// session and platform. A second Begin for the same pair replaces the
// previous handshake, so only the most recently issued state is redeemable.
func (f *Flow) Begin(ctx context.Context, sessionID, platform string) (string, error) {
	adapter, err := f.Adapter(platform)
	if err != nil {
		return "", err
	}

	authz, err := adapter.BeginAuthorization(ctx, shared.GenerateState())
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.pending[handshakeKey{sessionID, platform}] = models.Handshake{
		State:       authz.State,
		TokenSecret: authz.TokenSecret,
		CreatedAt:   time.Now().UTC(),
	}
	f.mu.Unlock()

	f.logger.Debug("authorization started", "platform", platform)
	return authz.URL, nil
}

// Complete finishes an authorization attempt from the platform's callback.
// The pending handshake is consumed exactly once, before any validation, so a
// failed callback cannot be replayed. A state mismatch is rejected with
// [shared.ErrCSRF] and no token exchange is attempted.
//
// A callback may arrive on a session other than the one that began the
// attempt: a CLI opens the consent URL in the system browser, which carries
// no CLI cookie. Such callbacks are matched to their handshake by state token
// and the credential is committed to the originating session.
func (f *Flow) Complete(ctx context.Context, sessionID, platform, state, code, verifier string) (*models.Credential, error) {
	adapter, err := f.Adapter(platform)
	if err != nil {
		return nil, err
	}

	owner := sessionID
	hs, ok := f.consume(sessionID, platform)
	if !ok && state != "" {
		hs, owner, ok = f.consumeByState(platform, state)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoHandshake, platform)
	}
	if time.Since(hs.CreatedAt) > handshakeTTL {
		return nil, fmt.Errorf("%w: authorization attempt expired", shared.ErrNoHandshake)
	}
	if state == "" || state != hs.State {
		return nil, shared.ErrCSRF
	}
	if code == "" && verifier == "" {
		return nil, shared.ErrMissingCode
	}

	cred, err := adapter.Exchange(ctx, hs, code, verifier)
	if err != nil {
		return nil, err
	}

	if err := f.store.Set(owner, platform, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	f.logger.Info("platform connected", "platform", platform, "account", cred.DisplayName)
	return cred, nil
}

// consume removes and returns the pending handshake under the lock, so a
// callback cannot race a concurrent authorization attempt into redeeming the
// wrong state.
func (f *Flow) consume(sessionID, platform string) (models.Handshake, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := handshakeKey{sessionID, platform}
	hs, ok := f.pending[key]
	if ok {
		delete(f.pending, key)
	}
	return hs, ok
}

// consumeByState finds and removes a pending handshake for the platform whose
// state token matches exactly, returning the session that began the attempt.
func (f *Flow) consumeByState(platform, state string) (models.Handshake, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key, hs := range f.pending {
		if key.platform == platform && hs.State == state {
			delete(f.pending, key)
			return hs, key.session, true
		}
	}
	return models.Handshake{}, "", false
}

// credentialValidator is implemented by adapters that can check a stored
// token live against the platform API; Instagram tokens can be revoked
// upstream long before their recorded expiry.
type credentialValidator interface {
	Validate(ctx context.Context, accessToken string) error
}

// Status reports the connection state for a session/platform pair. Observing
// an expired credential, or one the platform rejects live, clears it, so the
// reported state downgrades but never upgrades.
func (f *Flow) Status(ctx context.Context, sessionID, platform string) (*models.ConnectionStatus, error) {
	adapter, err := f.Adapter(platform)
	if err != nil {
		return nil, err
	}

	status := &models.ConnectionStatus{Platform: platform}

	cred, err := f.store.Get(sessionID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if cred == nil {
		return status, nil
	}

	if cred.Expired(time.Now()) {
		f.logger.Info("credential expired, disconnecting", "platform", platform)
		if err := f.store.Clear(sessionID, platform); err != nil {
			return nil, fmt.Errorf("failed to clear expired credential: %w", err)
		}
		return status, nil
	}

	if validator, ok := adapter.(credentialValidator); ok {
		if verr := validator.Validate(ctx, cred.AccessToken); verr != nil {
			f.logger.Info("credential rejected upstream, disconnecting", "platform", platform, "err", verr)
			if err := f.store.Clear(sessionID, platform); err != nil {
				return nil, fmt.Errorf("failed to clear rejected credential: %w", err)
			}
			return status, nil
		}
	}

	status.Connected = true
	status.AccountID = cred.AccountID
	status.DisplayName = cred.DisplayName
	status.ExpiresAt = cred.ExpiresAt
	status.ConnectedAt = cred.ConnectedAt
	return status, nil
}

// Disconnect clears the stored credential and any pending handshake for a
// session/platform pair.
func (f *Flow) Disconnect(sessionID, platform string) error {
	if _, err := f.Adapter(platform); err != nil {
		return err
	}

	f.mu.Lock()
	delete(f.pending, handshakeKey{sessionID, platform})
	f.mu.Unlock()

	if err := f.store.Clear(sessionID, platform); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	f.logger.Info("platform disconnected", "platform", platform)
	return nil
}

// Credential returns the stored credential for posting, or
// [shared.ErrNotAuthenticated] when the pair is not connected. An expired
// credential is treated as disconnected.
func (f *Flow) Credential(sessionID, platform string) (*models.Credential, error) {
	cred, err := f.store.Get(sessionID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if cred == nil {
		return nil, fmt.Errorf("%w: %s is not connected", shared.ErrNotAuthenticated, platform)
	}
	if cred.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: %s credential expired", shared.ErrTokenExpired, platform)
	}
	return cred, nil
}
