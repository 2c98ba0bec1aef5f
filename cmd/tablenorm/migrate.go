package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the documents and logical_tables schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.DSN == "" {
			return common.NewAppError(common.CodeConfig, "migrate requires --db or DB_URL", common.ErrInvalidInput)
		}
		db, err := repository.Open(ctx, repository.ConfigFromCommon(cfg.Database), logger)
		if err != nil {
			return err
		}
		defer db.Close(logger)

		if err := db.HealthCheck(ctx, cfg.Database.DialTimeout, logger); err != nil {
			return err
		}
		if err := repository.Migrate(ctx, db, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", db.Dialect())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
