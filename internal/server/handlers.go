package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/auth"
	"github.com/desertthunder/blastoff/internal/broadcast"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/platforms"
	"github.com/desertthunder/blastoff/internal/shared"
)

// webhookTester is Discord's webhook liveness check.
type webhookTester interface {
	TestWebhook(ctx context.Context, webhookURL string) error
}

// guildLister is Discord's server membership lookup.
type guildLister interface {
	UserGuilds(ctx context.Context, accessToken string) ([]platforms.DiscordGuild, error)
}

// API is the HTTP surface over the flow controller and broadcast coordinator.
// It implements [Handler] and serves everything under one route prefix, with
// an internal mux dispatching method-qualified patterns.
type API struct {
	flow        *auth.Flow
	coordinator *broadcast.Coordinator
	frontendURL string
	logger      *log.Logger
	mux         *http.ServeMux
}

// NewAPI creates the API handler. frontendURL is where Twitter's callback
// redirects land; empty falls back to JSON responses for all platforms.
func NewAPI(flow *auth.Flow, coordinator *broadcast.Coordinator, frontendURL string, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &API{
		flow:        flow,
		coordinator: coordinator,
		frontendURL: frontendURL,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.Root)
	mux.HandleFunc("GET /auth/{platform}", a.Begin)
	mux.HandleFunc("GET /auth/{platform}/callback", a.Callback)
	mux.HandleFunc("GET /auth/{platform}/status", a.Status)
	mux.HandleFunc("POST /auth/{platform}/disconnect", a.Disconnect)
	mux.HandleFunc("POST /auth/discord/test-webhook", a.TestWebhook)
	mux.HandleFunc("GET /auth/discord/guilds", a.Guilds)
	mux.HandleFunc("POST /auth/instagram/test-post", a.InstagramTestPost)
	mux.HandleFunc("POST /auth/twitter/test-post", a.TwitterTestPost)
	mux.HandleFunc("POST /blast-off", a.BlastOff)
	mux.HandleFunc("POST /blast-off/{platform}", a.BlastOffPlatform)
	a.mux = mux

	return a
}

// Routes returns the patterns this handler serves. The API owns the whole
// surface, so it registers at the root and dispatches internally.
func (a *API) Routes() []string {
	return []string{"/"}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Root reports service liveness and which platforms have adapters configured.
func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	configured := []string{}
	for _, p := range models.BroadcastOrder {
		if _, err := a.flow.Adapter(p); err == nil {
			configured = append(configured, p)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":      "blastoff",
		"status":    "ok",
		"platforms": configured,
	})
}

// Begin starts the OAuth flow and returns the external authorization URL.
func (a *API) Begin(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")

	authURL, err := a.flow.Begin(r.Context(), SessionID(r), platform)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"authUrl": authURL})
}

// Callback finishes the OAuth flow from the platform's redirect.
//
// Twitter's mobile flow expects a browser redirect back to the frontend with
// a status query parameter; Discord and Instagram callbacks answer JSON.
func (a *API) Callback(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")
	q := r.URL.Query()

	if platform == models.PlatformTwitter {
		_, err := a.flow.Complete(r.Context(), SessionID(r), platform,
			q.Get("oauth_token"), "", q.Get("oauth_verifier"))

		status := "success"
		if err != nil {
			a.logger.Error("twitter callback failed", "err", err)
			status = "error"
		}
		if a.frontendURL != "" {
			http.Redirect(w, r, a.frontendURL+"?twitter_auth="+status, http.StatusFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": err == nil})
		return
	}

	cred, err := a.flow.Complete(r.Context(), SessionID(r), platform,
		q.Get("state"), q.Get("code"), "")
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    cred.DisplayName,
	})
}

// Status reports the session's connection state for one platform.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	status, err := a.flow.Status(r.Context(), SessionID(r), r.PathValue("platform"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Disconnect clears the session's credential for one platform.
func (a *API) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := a.flow.Disconnect(SessionID(r), r.PathValue("platform")); err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TestWebhook validates and exercises a Discord webhook URL with a test message.
func (a *API) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WebhookURL string `json:"webhookUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, errors.Join(shared.ErrValidation, err))
		return
	}

	adapter, err := a.flow.Adapter(models.PlatformDiscord)
	if err != nil {
		a.writeError(w, err)
		return
	}
	tester, ok := adapter.(webhookTester)
	if !ok {
		a.writeError(w, shared.ErrNoPostingMethod)
		return
	}

	if err := tester.TestWebhook(r.Context(), body.WebhookURL); err != nil {
		writeJSON(w, statusFor(err), map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Guilds lists the Discord servers the connected account belongs to.
func (a *API) Guilds(w http.ResponseWriter, r *http.Request) {
	cred, err := a.flow.Credential(SessionID(r), models.PlatformDiscord)
	if err != nil {
		a.writeError(w, err)
		return
	}

	adapter, err := a.flow.Adapter(models.PlatformDiscord)
	if err != nil {
		a.writeError(w, err)
		return
	}
	lister, ok := adapter.(guildLister)
	if !ok {
		a.writeError(w, shared.ErrNotImplemented)
		return
	}

	guilds, err := lister.UserGuilds(r.Context(), cred.AccessToken)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(guilds),
		"guilds": guilds,
	})
}

// InstagramTestPost publishes a single test image post.
func (a *API) InstagramTestPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ImageURL string `json:"imageUrl"`
		Caption  string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, errors.Join(shared.ErrValidation, err))
		return
	}
	if body.Caption == "" {
		body.Caption = "Test post from Blast Off! 🚀"
	}

	entry := a.coordinator.Post(r.Context(), SessionID(r), models.PlatformInstagram, broadcast.Request{
		Announcement: models.Announcement{Message: body.Caption, ImageURL: body.ImageURL},
	})
	writeJSON(w, http.StatusOK, entry)
}

// TwitterTestPost publishes a single test tweet.
func (a *API) TwitterTestPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	// Body is optional for the test tweet.
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Message == "" {
		body.Message = "Test post from Blast Off! 🚀"
	}

	entry := a.coordinator.Post(r.Context(), SessionID(r), models.PlatformTwitter, broadcast.Request{
		Announcement: models.Announcement{Message: body.Message},
	})
	writeJSON(w, http.StatusOK, entry)
}

// BlastOff broadcasts one announcement to every enabled platform. The HTTP
// status is 200 even when individual platforms fail; callers interpret the
// per-platform entries.
func (a *API) BlastOff(w http.ResponseWriter, r *http.Request) {
	var req broadcast.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.Join(shared.ErrValidation, err))
		return
	}
	if req.Message == "" {
		a.writeError(w, errors.Join(shared.ErrValidation, errors.New("message is required")))
		return
	}

	result := a.coordinator.Broadcast(r.Context(), SessionID(r), req)
	writeJSON(w, http.StatusOK, result)
}

// BlastOffPlatform posts one announcement to a single platform.
func (a *API) BlastOffPlatform(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")

	var req broadcast.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.Join(shared.ErrValidation, err))
		return
	}
	if req.Message == "" {
		a.writeError(w, errors.Join(shared.ErrValidation, errors.New("message is required")))
		return
	}
	if !models.KnownPlatform(platform) {
		a.writeError(w, errors.Join(shared.ErrValidation, errors.New("unsupported platform")))
		return
	}

	entry := a.coordinator.Post(r.Context(), SessionID(r), platform, req)
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses and renders a JSON body.
func (a *API) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrMissingCode), errors.Is(err, shared.ErrNoHandshake):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrCSRF):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrPlatformAPI), errors.Is(err, shared.ErrAuthExchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
