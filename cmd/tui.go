package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotclean/internal/shared"
	"github.com/desertthunder/spotclean/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/spotclean-tui.log"

// TUI launches the interactive terminal UI for duplicate cleanup.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()

	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger

	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui.NewModel(ctx, cleaner), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
