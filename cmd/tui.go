package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/ui"
)

// TUI launches the interactive labeling interface.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	st, err := r.openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	sched := ui.NewScheduler()
	session, err := r.openSession(cmd, st, sched)
	if err != nil {
		return err
	}

	start := 0
	if cmd.IsSet("group") || cmd.IsSet("key") {
		if start, err = groupIndex(cmd, session.Groups()); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, session, sched, fileLogger).StartAt(start)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	session.Close()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
