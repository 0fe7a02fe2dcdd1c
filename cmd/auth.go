package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/blastoff/internal/formatter"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin starts the authorization flow for a platform by asking the
// running server for an authorization URL and opening it in the browser.
// The server completes the callback, so the CLI just hands off.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.StringArg("platform")
	if !models.KnownPlatform(platform) {
		return fmt.Errorf("unknown platform %q, expected one of: discord, instagram, twitter", platform)
	}

	if err := r.api.Health(ctx); err != nil {
		return fmt.Errorf("server is not running, start it with `blastoff serve`: %w", err)
	}

	authURL, err := r.api.BeginAuth(ctx, platform)
	if err != nil {
		return fmt.Errorf("failed to begin authorization: %w", err)
	}

	if cmd.Bool("no-browser") {
		r.writePlainln("Open this URL to authorize %s:", platform)
		r.writePlainln("%s", authURL)
		return nil
	}

	r.writePlainln("Opening browser to authorize %s...", platform)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlainln("Open this URL manually:\n%s", authURL)
	}

	r.writePlainln("Complete the flow in the browser, then check `blastoff auth status`.")
	return nil
}

// AuthStatus prints connection state for every platform.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	statuses, err := r.api.Statuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch statuses: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(statuses, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Platform Connections")
	return r.writePlain("%s", formatter.FormatStatuses(statuses))
}

// AuthDisconnect forgets stored credentials for a platform.
func (r *Runner) AuthDisconnect(ctx context.Context, cmd *cli.Command) error {
	platform := cmd.StringArg("platform")
	if !models.KnownPlatform(platform) {
		return fmt.Errorf("unknown platform %q, expected one of: discord, instagram, twitter", platform)
	}

	if err := r.api.Disconnect(ctx, platform); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	r.writePlainln("Disconnected %s", platform)
	return nil
}

// AuthTestWebhook sends a canned message to a Discord webhook so the URL can
// be verified without a broadcast.
func (r *Runner) AuthTestWebhook(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.TestWebhook(ctx, cmd.String("url")); err != nil {
		return fmt.Errorf("webhook test failed: %w", err)
	}

	r.writePlainln("Webhook OK")
	return nil
}
