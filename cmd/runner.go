package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/repositories"
	"github.com/desertthunder/tslabel/internal/selection"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/workspace"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by every command.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, scanCommand, groupsCommand, annotationsCommand, saveCommand, exportCommand, historyCommand, labelCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config. A missing default config keeps the built-in defaults;
// a missing explicit one is an error.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		config, err := shared.LoadConfig(path)
		switch {
		case err == nil:
			r.config = config
			r.configPath = path
		case errors.Is(err, shared.ErrMissingConfig) && !cmd.IsSet("config"):
			r.logger.Debug("no config file, using defaults", "path", path)
		default:
			return ctx, err
		}
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// dirs returns the data directories from --dir or the config.
func (r *Runner) dirs(cmd *cli.Command) []string {
	if dirs := cmd.StringSlice("dir"); len(dirs) > 0 {
		return dirs
	}
	return r.config.Data.Directories
}

// discover scans the data directories and groups the valid files.
func (r *Runner) discover(cmd *cli.Command) ([]models.Group, error) {
	dirs := r.dirs(cmd)
	files, err := dataset.Scan(dirs, r.config.Data.Extensions...)
	if err != nil {
		return nil, err
	}
	files = dataset.Validate(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", shared.ErrNoFiles, dirs)
	}

	mode, err := models.ParseMatchMode(r.config.Grouping.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	groups := dataset.GroupFiles(files, mode, r.config.Grouping.Length)
	r.logger.Debug("discovered groups", "files", len(files), "groups", len(groups))
	return groups, nil
}

// groupIndex resolves --group (1-based) or --key against groups.
func groupIndex(cmd *cli.Command, groups []models.Group) (int, error) {
	if key := cmd.String("key"); key != "" {
		for i, g := range groups {
			if g.Key == key {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: no group with key %q", shared.ErrInvalidArgument, key)
	}
	n := cmd.Int("group")
	if n < 1 || n > len(groups) {
		return 0, fmt.Errorf("%w: group %d (have %d)", shared.ErrInvalidArgument, n, len(groups))
	}
	return n - 1, nil
}

// stores opens the snapshot database.
type stores struct {
	db        *sql.DB
	snapshots *repositories.SnapshotRepository
	records   *repositories.SaveRecordRepository
}

func (r *Runner) openStores() (*stores, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:        db,
		snapshots: repositories.NewSnapshotRepository(db),
		records:   repositories.NewSaveRecordRepository(db),
	}, nil
}

func (s *stores) Close() error { return s.db.Close() }

// saveOptions merges the --mode, --skip and --overwrite flags over the config.
func (r *Runner) saveOptions(cmd *cli.Command) (dataset.SaveOptions, error) {
	mode := r.config.Save.Mode
	if cmd.IsSet("mode") {
		mode = cmd.String("mode")
	}
	m, err := models.ParseSaveMode(mode)
	if err != nil {
		return dataset.SaveOptions{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	skip := r.config.Save.SkipPoints
	if cmd.IsSet("skip") {
		skip = cmd.Int("skip")
	}
	if skip < 0 {
		return dataset.SaveOptions{}, fmt.Errorf("%w: skip must not be negative, got %d", shared.ErrInvalidFlag, skip)
	}
	return dataset.SaveOptions{Mode: m, SkipPoints: skip, Overwrite: cmd.Bool("overwrite")}, nil
}

// outputDir returns --output-dir or the configured output directory.
func (r *Runner) outputDir(cmd *cli.Command) string {
	if dir := cmd.String("output-dir"); dir != "" {
		return dir
	}
	return r.config.Save.OutputDir
}

// openSession builds a session over the discovered groups with sqlite-backed snapshots.
func (r *Runner) openSession(cmd *cli.Command, st *stores, sched selection.Scheduler) (*workspace.Session, error) {
	groups, err := r.discover(cmd)
	if err != nil {
		return nil, err
	}
	save, err := r.saveOptions(cmd)
	if err != nil {
		return nil, err
	}
	yMode, err := models.ParseYMode(r.config.View.YMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	return workspace.New(workspace.Options{
		Workspace:  workspace.Key(r.dirs(cmd)),
		Groups:     groups,
		MinWidth:   r.config.Annotation.MinWidth,
		Dwell:      r.config.Annotation.Dwell(),
		WindowSize: r.config.View.WindowSize,
		YMode:      yMode,
		Save:       save,
		OutputDir:  r.outputDir(cmd),
		Snapshots:  st.snapshots,
		Records:    st.records,
		Scheduler:  sched,
		Logger:     r.logger,
	})
}

// withGroup opens the group selected by --group/--key, runs fn and persists the group's annotations.
func (r *Runner) withGroup(ctx context.Context, cmd *cli.Command, fn func(s *workspace.Session) error) error {
	st, err := r.openStores()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := r.openSession(cmd, st, nil)
	if err != nil {
		return err
	}
	index, err := groupIndex(cmd, s.Groups())
	if err != nil {
		return err
	}
	if err := s.Open(ctx, index); err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
