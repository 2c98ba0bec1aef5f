package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/statement-tables/internal/core"
	"github.com/joseph-ayodele/statement-tables/internal/entity"
	"github.com/joseph-ayodele/statement-tables/internal/export"
	"github.com/joseph-ayodele/statement-tables/internal/ingest"
)

var (
	runOut     string
	runXLSX    bool
	runWorkers int
	runForce   bool
)

var runCmd = &cobra.Command{
	Use:   "run PATH...",
	Short: "Process extractor output files or directories",
	Long: `Process each extractor output file. Directories are scanned for files with the
configured extensions. One JSON report per document is written to stdout, or to
<out>/<name>.tables.json when --out is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory for per-document results (defaults to OUTPUT_DIR)")
	runCmd.Flags().BoolVar(&runXLSX, "xlsx", false, "also write an XLSX workbook per document")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "documents processed in parallel (defaults to WORKERS)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "reprocess documents already recorded in the database")
	rootCmd.AddCommand(runCmd)
}

type fileOutcome struct {
	path   string
	report *core.Report
	err    error
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if runOut == "" {
		runOut = cfg.Export.OutputDir
	}
	if runWorkers <= 0 {
		runWorkers = cfg.Server.Workers
	}
	runXLSX = runXLSX || cfg.Export.XLSX
	if runXLSX && runOut == "" {
		return errors.New("--xlsx requires --out or OUTPUT_DIR")
	}
	if runOut != "" {
		if err := os.MkdirAll(runOut, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	paths, err := expandPaths(args, cfg.Watch.Extensions, cfg.Watch.SkipHidden)
	if err != nil {
		return err
	}
	logger.Info("run.start", "documents", len(paths), "workers", runWorkers, "persist", cfg.Database.DSN != "")

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	outcomes := make([]fileOutcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runWorkers)
	var outMu sync.Mutex
	for i, p := range paths {
		g.Go(func() error {
			rep, err := a.process(gctx, p)
			if err == nil {
				outMu.Lock()
				err = a.writeResult(gctx, p, rep)
				outMu.Unlock()
			}
			outcomes[i] = fileOutcome{path: p, report: rep, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	var review int
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			logger.Error("run.document.failed", "path", o.path, "error", o.err)
			failed = append(failed, fmt.Errorf("%s: %w", o.path, o.err))
		case o.report.Result.NeedsReview():
			review++
		}
	}
	logger.Info("run.complete", "documents", len(paths), "failed", len(failed), "needs_review", review)
	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

func (a *app) process(ctx context.Context, path string) (*core.Report, error) {
	if runForce {
		return a.processor.Reprocess(ctx, path)
	}
	return a.processor.ProcessPath(ctx, path)
}

// writeResult prints or writes the report. Deduplicated reports carry no tables, so those
// are reloaded from the database.
func (a *app) writeResult(ctx context.Context, path string, rep *core.Report) error {
	tables := rep.Result.Tables
	if rep.Deduplicated {
		var err error
		if tables, err = a.processor.Tables(ctx, rep.DocumentID); err != nil {
			return err
		}
		rep.Result.Tables = tables
	}

	if runOut == "" {
		return json.NewEncoder(os.Stdout).Encode(rep)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(runOut, base+".tables.json"), b, 0o644); err != nil {
		return err
	}
	if runXLSX {
		return writeWorkbook(a, filepath.Join(runOut, base+".xlsx"), path, tables)
	}
	return nil
}

func writeWorkbook(a *app, out, name string, tables []entity.LogicalTable) error {
	data, err := export.NewService(a.logger).WorkbookXLSX(name, tables)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

// expandPaths replaces directory arguments with the matching files inside them.
func expandPaths(args, exts []string, skipHidden bool) ([]string, error) {
	set := ingest.ExtSet(exts)
	var out []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil || !fi.IsDir() {
			out = append(out, arg)
			continue
		}
		files, _, err := ingest.ScanDirectory(arg, set, skipHidden)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
