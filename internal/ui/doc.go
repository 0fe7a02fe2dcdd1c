// Package ui implements an interactive terminal composer using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for broadcasting an announcement:
//  1. [ComposeView] : Write the message and optional enhancement fields
//  2. [PlatformView] : Toggle target platforms, gated by each platform's connection state
//  3. [ConfirmView] : Confirm the blast off
//  4. [SendView] : Posting in flight
//  5. [ResultView] : Per-platform success/failure breakdown
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Platform connection states are fetched from the API server on startup and after each broadcast,
// so a platform disconnected mid-session stops being selectable on the next compose.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
