package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/storage/database"
)

// mockable
var (
	migrateFunc = func(conf *core.Config, command string, args ...string) error {
		db, err := database.Open(conf)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return database.Migrate(db, conf.Database.Engine, command, args...)
	}
	createDBFunc = database.CreateIfNotExist
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, down, status, ...) against the configured database.",
		Args:  argsRange(1, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateFunc(cli.conf, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) createDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "createdb",
		Short: "Create the application user and database (postgres only).",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := createDBFunc(cli.conf); err != nil {
				return errors.Wrap(err, "creating database")
			}
			cmd.Printf("database %s ready\n", cli.conf.Database.Name)
			return nil
		},
	}
}
