package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/spotclean/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the configuration file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err == nil {
		r.logger.Info("config file found", "path", r.configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
		if err := r.writePlain("✓ Created %s\n", r.configPath); err != nil {
			return err
		}
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ Database ready at %s\n", r.config.Database.Path)
	for _, s := range states {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(&b, "  %04d %s (%s)\n", s.Version, s.Name, applied)
	}

	if !r.config.Credentials.Spotify.HasToken() {
		fmt.Fprintf(&b, "\nNext steps:\n1. Set credentials.spotify.client_id and client_secret in %s\n", r.configPath)
		b.WriteString("2. Run 'spotclean auth' to sign in\n")
	}
	return r.writePlain("%s", b.String())
}
