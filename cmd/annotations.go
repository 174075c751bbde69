package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/formatter"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/workspace"
)

// AnnotationsList prints the intervals of one group.
func (r *Runner) AnnotationsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		return formatter.Print(r.output, s.Export(), format)
	})
}

// AnnotationsAdd adds one interval and broadcasts it to every view of the group.
func (r *Runner) AnnotationsAdd(ctx context.Context, cmd *cli.Command) error {
	start, end := cmd.IntArg("start"), cmd.IntArg("end")
	if end == 0 {
		return fmt.Errorf("%w: start and end", shared.ErrMissingArgument)
	}

	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		id, err := s.AddInterval(start, end)
		if err != nil {
			return err
		}
		a, _ := s.Store().Get(id)
		r.writePlain("✓ Added #%d %s\n", id, a)
		return nil
	})
}

// AnnotationsRemove deletes intervals by id.
func (r *Runner) AnnotationsRemove(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.IntArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one id", shared.ErrMissingArgument)
	}

	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		removed := s.Delete(ids...)
		if removed == 0 {
			return fmt.Errorf("%w: %v", shared.ErrAnnotationNotFound, ids)
		}
		r.writePlain("✓ Removed %d of %d interval(s)\n", removed, len(ids))
		return nil
	})
}

// AnnotationsClear removes every interval of a group.
func (r *Runner) AnnotationsClear(ctx context.Context, cmd *cli.Command) error {
	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		n := s.Store().Len()
		s.ClearAll()
		r.writePlain("✓ Cleared %d interval(s)\n", n)
		return nil
	})
}

// AnnotationsExport writes the intervals of a group to --output.
func (r *Runner) AnnotationsExport(ctx context.Context, cmd *cli.Command) error {
	var format formatter.Format
	if f := cmd.String("format"); f != "" {
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		format = parsed
	}
	output := cmd.String("output")

	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		export := s.Export()
		path, err := formatter.WriteExport(export, output, format)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d interval(s) to %s\n", len(export.Annotations), path)
		return nil
	})
}

// AnnotationsImport replaces the intervals of a group with those read from a file.
func (r *Runner) AnnotationsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	list, err := formatter.ReadAnnotations(path)
	if err != nil {
		return err
	}

	return r.withGroup(ctx, cmd, func(s *workspace.Session) error {
		if err := s.Import(list); err != nil {
			if errors.Is(err, shared.ErrInvalidInterval) {
				return fmt.Errorf("%s: %w", path, err)
			}
			return err
		}
		r.writePlain("✓ Imported %d interval(s) from %s\n", s.Store().Len(), path)
		return nil
	})
}
