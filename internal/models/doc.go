// Package models defines domain entities shared across the blastoff service.
//
// The package contains three categories of types:
//
// 1. Broadcast inputs: values composed by the client and consumed once
//   - [Announcement] : the message plus optional enhancement fields
//
// 2. Authorization state: values owned by the session layer
//   - [Credential] : access token and identity committed after an OAuth exchange
//   - [Handshake] : transient state/secret pair linking an auth URL to its callback
//
// 3. Broadcast outputs: values reported back to the caller
//   - [PostReceipt] : per-platform details of a successful post
//   - [BroadcastEntry] / [BroadcastResult] : ordered per-platform outcomes
//   - [ConnectionStatus] : auth state surfaced by the status endpoints
//
// Platform names are fixed identifiers (discord, instagram, twitter); the
// coordinator iterates them in [BroadcastOrder] so results are deterministic
// regardless of completion order.
package models
