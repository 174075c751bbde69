package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/formatter"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/tasks"
	"github.com/desertthunder/tslabel/internal/workspace"
)

// Save writes labeled output for the selected group, or for every group with --all.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		return r.saveAll(ctx, cmd)
	}

	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		if s.Store().Len() == 0 {
			r.writePlain("Group has no intervals, nothing to save\n")
			return nil
		}
		res, err := s.Save(cmd.Bool("overwrite"))
		if errors.Is(err, shared.ErrTargetExists) {
			return fmt.Errorf("%w (use --overwrite to replace it)", err)
		}
		if err != nil {
			return err
		}

		r.writePlain("✓ Saved %d interval(s) as %s output\n", s.Store().Len(), res.Mode)
		for _, dir := range res.Dirs {
			r.writePlain("  %s\n", dir)
		}
		for _, path := range res.Skipped {
			r.writePlain("! Skipped %s (no samples after skipping)\n", path)
		}
		return nil
	})
}

func (r *Runner) saveAll(ctx context.Context, cmd *cli.Command) error {
	save, err := r.saveOptions(cmd)
	if err != nil {
		return err
	}
	format := formatter.FormatJSON
	if cmd.Bool("yaml") {
		format = formatter.FormatYAML
	}

	return r.batch(ctx, cmd, "Save", func(e *tasks.Engine, prog chan<- tasks.ProgressUpdate, ws string, groups []models.Group) (*tasks.BatchResult, error) {
		return e.BatchSave(ctx, prog, ws, groups, tasks.BatchOpts{
			OutputDir:  r.outputDir(cmd),
			Save:       save,
			Format:     format,
			NumWorkers: cmd.Int("workers"),
		})
	})
}

// ExportAll writes the stored intervals of every group, one file per group.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	return r.batch(ctx, cmd, "Export", func(e *tasks.Engine, prog chan<- tasks.ProgressUpdate, ws string, groups []models.Group) (*tasks.BatchResult, error) {
		return e.BatchExport(ctx, prog, ws, groups, tasks.BatchOpts{
			OutputDir:  cmd.String("output-dir"),
			Format:     format,
			NumWorkers: cmd.Int("workers"),
		})
	})
}

type batchFunc func(e *tasks.Engine, prog chan<- tasks.ProgressUpdate, ws string, groups []models.Group) (*tasks.BatchResult, error)

// batch runs fn over every discovered group and prints progress and a summary.
func (r *Runner) batch(ctx context.Context, cmd *cli.Command, title string, fn batchFunc) error {
	groups, err := r.discover(cmd)
	if err != nil {
		return err
	}
	st, err := r.openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	ws := workspace.Key(r.dirs(cmd))
	r.logger.Info("starting batch", "op", title, "groups", len(groups), "workspace", ws)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadSnapshots:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SaveGroup, tasks.ExportGroup:
				r.writePlain("   ✓ %s\n", update.Message)
			case tasks.GroupFailed:
				r.writePlain("   × %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := fn(tasks.NewEngine(st.snapshots, st.records, r.logger), progressCh, ws, groups)
	close(progressCh)
	<-done

	if err != nil && result == nil {
		return err
	}

	r.writePlainHeader(title + " Complete!")
	r.writePlain("Output: %s\n", result.OutputDir)
	r.writePlain("Groups: %d succeeded, %d failed, %d without intervals (of %d)\n",
		result.Succeeded, result.Failed, result.Empty, result.TotalGroups)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  × %s: %s\n", res.GroupKey, res.ErrorMessage)
		}
	}
	return err
}
