package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/blastoff/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file the user fills in with app credentials.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	r.writePlainln("Created %s", path)
	r.writePlainln("Fill in platform credentials, then run `blastoff serve`.")
	return nil
}
