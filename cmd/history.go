package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/workspace"
)

type historyEntry struct {
	Sequence    int       `json:"sequence"`
	Workspace   string    `json:"workspace"`
	Group       string    `json:"group"`
	Mode        string    `json:"mode"`
	OutputDir   string    `json:"output_dir"`
	Files       int       `json:"files"`
	Annotations int       `json:"annotations"`
	SavedAt     time.Time `json:"saved_at"`
}

// History lists previous saves, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if !cmd.Bool("all-workspaces") {
		criteria["workspace"] = workspace.Key(r.dirs(cmd))
	}
	records, err := st.records.List(criteria)
	if err != nil {
		return err
	}

	entries := make([]historyEntry, len(records))
	for i, rec := range records {
		entries[i] = historyEntry{
			Sequence:    rec.Sequence(),
			Workspace:   rec.Workspace(),
			Group:       rec.GroupKey(),
			Mode:        string(rec.Mode()),
			OutputDir:   rec.OutputDir(),
			Files:       rec.FileCount(),
			Annotations: rec.AnnotationCount(),
			SavedAt:     rec.CreatedAt(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("No saves recorded\n")
		return nil
	}
	r.writePlainHeader("Save history")
	for _, e := range entries {
		r.writePlain("#%-4d %s  %-20s %-8s %d file(s), %d interval(s)\n      → %s\n",
			e.Sequence, e.SavedAt.Local().Format(time.DateTime), e.Group, e.Mode, e.Files, e.Annotations, e.OutputDir)
	}
	return nil
}
