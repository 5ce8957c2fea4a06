package main

import (
	"github.com/spf13/cobra"

	"github.com/filmsfather/CampusWoodieVer2/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate COMMAND [ARGS...]",
		Short:              "Run a goose migration command (up, down, status, version, redo, ...)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return gooseRunFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}
