// Package platforms defines the [Platform] interface for social networks and implements it for Discord, Instagram, and Twitter.
//
// # Platform Interface
//
// All networks implement a common abstraction (begin authorization, exchange,
// post) so the flow controller and broadcast coordinator can treat them
// uniformly.
//
// # Discord Implementation
//
// [DiscordPlatform] authenticates with OAuth2 (identify + guilds scopes) but
// posts through a pre-shared webhook URL: OAuth channel posting requires bot
// permissions this app doesn't request, so Post on a connected credential
// returns a placeholder receipt without a network call. PostWebhook builds a
// content message plus a rich embed from the announcement's enhancement
// fields.
//
// # Instagram Implementation
//
// [InstagramPlatform] authenticates with the Basic Display OAuth flow,
// upgrades the token to a long-lived one, and posts via the Graph API's
// two-step container publish (create /me/media, then /me/media_publish). A
// post without an image URL is rejected before any network call.
//
// # Twitter Implementation
//
// [TwitterPlatform] uses the OAuth 1.0a three-legged flow (dghubble/oauth1):
// the request token doubles as the handshake state. Tweets go through the v2
// create-tweet endpoint after a 280-character pre-flight check. Media upload
// is best-effort: a failed upload degrades the tweet to text-only, logged but
// not surfaced as a post failure, with MediaAttached=false on the receipt.
//
// # Error Handling
//
// Adapters use typed errors from the shared package:
//   - [shared.ErrValidation] : rejected before any network call
//   - [shared.ErrNotAuthenticated] : no credential for the posting path
//   - [shared.ErrAuthExchange] : the platform rejected the code/verifier
//   - [shared.ErrPlatformAPI] : non-2xx response, status and body surfaced verbatim
//
// All outbound calls share one HTTP client with a fixed timeout and a
// token-bucket rate limit (see [NewHTTPClient]).
package platforms
