package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
	"github.com/desertthunder/squash/internal/tasks"
	"github.com/desertthunder/squash/internal/ui"
)

// TUI converts the given paths and opens the interactive result browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	var inputs []models.InputFile
	if paths := cmd.Args().Slice(); len(paths) > 0 {
		if inputs, err = tasks.LoadInputs(paths); err != nil {
			return err
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.ApplyLogLevel(fileLogger, config.Logging.Level); err != nil {
		return err
	}
	r.SetLogger(fileLogger)

	sess, err := r.newSession(ctx, config, config.Export.OpenAfterSave)
	if err != nil {
		return err
	}
	defer sess.Close()

	model := ui.NewModel(ctx, sess.converter, sess.store, sess.gateway, inputs)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
