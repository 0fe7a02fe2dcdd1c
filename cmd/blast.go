package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/blastoff/internal/broadcast"
	"github.com/desertthunder/blastoff/internal/formatter"
	"github.com/desertthunder/blastoff/internal/models"
	"github.com/urfave/cli/v3"
)

// Blast posts an announcement to the selected platforms through the running
// server and prints the per-platform breakdown.
func (r *Runner) Blast(ctx context.Context, cmd *cli.Command) error {
	platforms := cmd.StringSlice("platforms")
	if len(platforms) == 0 {
		platforms = models.BroadcastOrder
	}
	for _, p := range platforms {
		if !models.KnownPlatform(p) {
			return fmt.Errorf("unknown platform %q, expected one of: discord, instagram, twitter", p)
		}
	}

	req := broadcast.Request{
		Announcement: models.Announcement{
			Message:  cmd.String("message"),
			Title:    cmd.String("title"),
			URL:      cmd.String("url"),
			ImageURL: cmd.String("image"),
		},
		Platforms:  platforms,
		WebhookURL: cmd.String("webhook"),
	}

	result, err := r.api.BlastOff(ctx, req)
	if err != nil {
		return fmt.Errorf("blast off failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader("🚀 Blast Off")
	if err := r.writePlain("%s", formatter.FormatResult(result)); err != nil {
		return err
	}

	if cmd.Bool("report") {
		path, err := formatter.WriteReport(req.Announcement, result, cmd.String("output"))
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.writePlainln("Report written to %s", path)
	}

	return nil
}
