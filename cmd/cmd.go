// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/formatter"
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringSliceFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Data directory to scan (repeatable, overrides data.directories)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

func groupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Group number as listed by 'tslabel groups'",
			Value:   1,
		},
		&cli.StringFlag{
			Name:    "key",
			Aliases: []string{"k"},
			Usage:   "Group key (takes precedence over --group)",
		},
	}
}

func saveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Output layout: merged or separate (default from config)",
		},
		&cli.IntFlag{
			Name:  "skip",
			Usage: "Leading samples dropped from every file (default from config)",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for labeled output (default from config)",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Replace existing output",
		},
	}
}

func formatFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, yaml, csv, markdown, txt",
		Value:   value,
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand initializes configuration and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, then initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "status", Usage: "List migrations and whether each is applied"},
			&cli.BoolFlag{Name: "rollback", Usage: "Roll back the most recent migration"},
		},
		Action: r.Setup,
	}
}

// scanCommand lists discovered files
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List array files found in the data directories",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Scan,
	}
}

// groupsCommand lists file groups
func groupsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "List file groups with their stored annotation counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Groups,
	}
}

// annotationsCommand handles annotation operations on one group
func annotationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "annotations",
		Aliases: []string{"ann"},
		Usage:   "Inspect and edit the stored intervals of one group",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Print the intervals of a group",
				Flags:  withFlags(groupFlags(), []cli.Flag{formatFlag(string(formatter.FormatText))}),
				Action: r.AnnotationsList,
			},
			{
				Name:  "add",
				Usage: "Add an interval [start, end)",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "start"},
					&cli.IntArg{Name: "end"},
				},
				Flags:  groupFlags(),
				Action: r.AnnotationsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove intervals by id",
				Arguments: []cli.Argument{
					&cli.IntArgs{Name: "ids", Min: 1, Max: -1},
				},
				Flags:  groupFlags(),
				Action: r.AnnotationsRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove every interval of a group",
				Flags:  groupFlags(),
				Action: r.AnnotationsClear,
			},
			{
				Name:  "export",
				Usage: "Write the intervals of a group to a file",
				Flags: withFlags(groupFlags(), []cli.Flag{
					formatFlag(""),
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output file path (format inferred from the extension)",
						Required: true,
					},
				}),
				Action: r.AnnotationsExport,
			},
			{
				Name:  "import",
				Usage: "Replace the intervals of a group from a json, yaml or csv file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  groupFlags(),
				Action: r.AnnotationsImport,
			},
		},
	}
}

// saveCommand writes labeled output
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Write data, label and timestamp arrays for one group or all groups",
		Flags: withFlags(groupFlags(), saveFlags(), []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Save every group with stored intervals"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent groups for --all", Value: 4},
			&cli.BoolFlag{Name: "yaml", Usage: "Write the --all manifest as YAML"},
		}),
		Action: r.Save,
	}
}

// exportCommand exports all groups
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the stored intervals of every group, one file per group",
		Flags: []cli.Flag{
			formatFlag(string(formatter.FormatJSON)),
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for the exported files",
				Value:   "./exports",
			},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent groups", Value: 4},
		},
		Action: r.ExportAll,
	}
}

// historyCommand lists past saves
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previous saves of labeled output",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of entries", Value: 20},
			&cli.BoolFlag{Name: "all-workspaces", Usage: "Include saves from other data directories"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.History,
	}
}

// labelCommand launches the interactive labeler
func labelCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "label",
		Aliases: []string{"tui"},
		Usage:   "Open the interactive labeling interface",
		Flags:   withFlags(groupFlags(), saveFlags()),
		Action:  r.TUI,
	}
}
