package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/workspace"
)

// Scan lists the array files found in the data directories.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	dirs := r.dirs(cmd)
	files, err := dataset.Scan(dirs, r.config.Data.Extensions...)
	if err != nil {
		return err
	}
	valid := dataset.Validate(files)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"directories": dirs, "files": valid, "skipped": len(files) - len(valid)}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%d file(s) in %v", len(valid), dirs))
	for _, f := range valid {
		r.writePlain("%s\n", f)
	}
	if n := len(files) - len(valid); n > 0 {
		r.writePlainln("Skipped %d empty or unreadable file(s)", n)
	}
	return nil
}

type groupSummary struct {
	Number      int      `json:"number"`
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Files       []string `json:"files"`
	Annotations int      `json:"annotations"`
}

// Groups lists the file groups and how many intervals each has stored.
func (r *Runner) Groups(ctx context.Context, cmd *cli.Command) error {
	groups, err := r.discover(cmd)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	if st, err := r.openStores(); err != nil {
		r.logger.Warn("annotation counts unavailable", "error", err)
	} else {
		defer st.Close()
		ws := workspace.Key(r.dirs(cmd))
		for _, g := range groups {
			snap, err := st.snapshots.GetByKey(ws, g.Key)
			if errors.Is(err, shared.ErrSnapshotNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			counts[g.Key] = len(snap.Annotations())
		}
	}

	summaries := make([]groupSummary, len(groups))
	for i, g := range groups {
		summaries[i] = groupSummary{
			Number:      i + 1,
			Key:         g.Key,
			Name:        dataset.GroupName(g),
			Files:       g.Files,
			Annotations: counts[g.Key],
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	r.writePlainHeader(fmt.Sprintf("%d group(s) by %s (%d chars)", len(groups), r.config.Grouping.Mode, r.config.Grouping.Length))
	for _, s := range summaries {
		r.writePlain("%3d. %-24s %d file(s), %d interval(s)\n", s.Number, s.Name, len(s.Files), s.Annotations)
		for _, f := range s.Files {
			r.writePlain("       %s\n", f)
		}
	}
	return nil
}
