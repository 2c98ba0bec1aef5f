package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
)

var (
	exportOut      string
	exportDocument string
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write a document's normalized tables as an XLSX workbook",
	Long: `Write a document's normalized tables as an XLSX workbook. Either process FILE
directly, or load an already-processed document by --document from the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (exportDocument != "") {
			return common.NewAppError(common.CodeConfig, "pass exactly one of FILE or --document", common.ErrInvalidInput)
		}
		ctx := cmd.Context()
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if exportDocument != "" && cfg.Database.DSN == "" {
			return common.NewAppError(common.CodeConfig, "--document requires --db or DB_URL", common.ErrInvalidInput)
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			name   string
			tables []entity.LogicalTable
		)
		if exportDocument != "" {
			id, perr := uuid.Parse(exportDocument)
			if perr != nil {
				return common.NewAppError(common.CodeInvalidDocument, "invalid --document id", errors.Join(common.ErrInvalidInput, perr))
			}
			name = id.String()
			tables, err = a.processor.Tables(ctx, id)
		} else {
			name = args[0]
			rep, perr := a.processor.Reprocess(ctx, name)
			if perr != nil {
				return perr
			}
			tables = rep.Result.Tables
		}
		if err != nil {
			return err
		}

		if err := writeWorkbook(a, exportOut, name, tables); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tables to %s\n", len(tables), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "tables.xlsx", "output XLSX path")
	exportCmd.Flags().StringVar(&exportDocument, "document", "", "ID of an already-processed document")
	rootCmd.AddCommand(exportCmd)
}
