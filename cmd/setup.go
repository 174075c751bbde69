package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tslabel/internal/shared"
)

// Setup writes config.toml from the embedded template when missing, then initializes the database.
//
// --status reports migrations without applying them and --rollback undoes the latest one.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.configPath = configPath
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns)

	switch {
	case cmd.Bool("status"):
		return r.writeMigrations(db)
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back latest migration\n")
		return r.writeMigrations(db)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s\n", r.config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point data.directories in %s at your .npy files\n", configPath)
	r.writePlain("2. Run 'tslabel groups' to check the grouping, then 'tslabel label'\n")
	return nil
}

func (r *Runner) writeMigrations(db *sql.DB) error {
	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}
	r.writePlainHeader("Migrations")
	for _, m := range statuses {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		r.writePlain("%04d %-24s %s\n", m.Version, m.Name, state)
	}
	return nil
}
