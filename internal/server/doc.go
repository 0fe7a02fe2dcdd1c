// Package server provides HTTP routing, middleware, and the JSON API for the broadcast service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
//
// # API Handler
//
// [API] implements [Handler] and owns the whole HTTP surface: the OAuth begin,
// callback, status, and disconnect endpoints per platform, the platform test
// endpoints, and the blast-off broadcast endpoints. It registers at the root
// and dispatches internally, so middleware applies once to the whole surface.
//
// # Sessions
//
// [SessionMiddleware] assigns each client an opaque cookie-backed session id.
// Stored credentials and pending OAuth handshakes are keyed by it, so two
// browsers never share a connection.
//
// # Callback Rendering
//
// The handshake state machine lives in the auth package; this package only
// renders its outcome. Discord and Instagram callbacks answer JSON, while
// Twitter's callback redirects the browser back to the configured frontend
// with a twitter_auth status parameter, matching what the mobile composer
// polls for.
//
// # Error Mapping
//
// Typed errors from the shared package map onto HTTP statuses: not configured
// becomes 503, validation and missing-code failures 400, a state mismatch
// 403, missing or expired credentials 401, and upstream platform failures
// 502. Broadcast responses are always 200; per-platform failures live in the
// result entries.
package server
