package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-tables/internal/common"
	"github.com/joseph-ayodele/statement-tables/internal/extract"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check extractor output files against the document schema",
	Long: `Check extractor output files against the document schema. The exit code of the
first failure is reported: 3 for an invalid document, 5 for a missing file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var firstErr error
		for _, path := range args {
			pages, err := validateFile(path)
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\tpages=%d\n", path, pages)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invalid\t%s\t%v\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, common.NewAppError(common.CodeNotFound, path, fmt.Errorf("%w: %v", common.ErrNotFound, err))
	}
	doc, err := extract.Decode(data, path)
	if err != nil {
		return 0, err
	}
	return len(doc.Pages), nil
}
