package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blastoff/internal/ui"
	"github.com/urfave/cli/v3"
)

// Compose launches the interactive composer against the running server.
func (r *Runner) Compose(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.Health(ctx); err != nil {
		return fmt.Errorf("server is not running, start it with `blastoff serve`: %w", err)
	}

	program := tea.NewProgram(ui.NewModel(ctx, r.api), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("composer failed: %w", err)
	}

	return nil
}
