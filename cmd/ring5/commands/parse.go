package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nikiitin/ring5/internal/ring5/config"
	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/observability"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// ParseCommand holds configuration and dependencies for the parse command.
type ParseCommand struct {
	root         string
	glob         string
	requestsPath string
	outputDir    string
	strategyName string
	useScan      bool
	scanLimit    int
	previewRows  int
	configFile   string
	noColor      bool
}

// NewParseCommand creates the parse subcommand: parses stats files
// against a Stat Request document and writes the results to CSV.
func NewParseCommand() *cobra.Command {
	pc := &ParseCommand{}

	cmd := &cobra.Command{
		Use:   "parse [root]",
		Short: "Parse stats files against a Stat Request document and emit a CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.glob, "glob", "", "Filename glob identifying stats files (default from config)")
	cmd.Flags().StringVar(&pc.requestsPath, "requests", "", "Path to a YAML or JSON Stat Request document (required)")
	cmd.Flags().StringVarP(&pc.outputDir, "output", "o", "", "Output directory for results.csv (default from config)")
	cmd.Flags().StringVar(&pc.strategyName, "strategy", "", "Parse strategy: simple or config-aware (default from config)")
	cmd.Flags().BoolVar(&pc.useScan, "use-scan", false, "Scan root/glob first so regex requests expand against the discovered catalog")
	cmd.Flags().IntVar(&pc.scanLimit, "scan-limit", 0, "Maximum concurrent file scans when --use-scan is set")
	cmd.Flags().IntVar(&pc.previewRows, "preview", 0, "Print up to N rows of the resulting CSV as a table (0 disables)")
	cmd.Flags().StringVar(&pc.configFile, "config", "", "Configuration file path")
	cmd.Flags().BoolVar(&pc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (pc *ParseCommand) run(cmd *cobra.Command, args []string) error {
	color.NoColor = pc.noColor //nolint:reassign // intentional override of library global

	cfg, err := config.LoadConfig(pc.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	glob := pc.glob
	if glob == "" {
		glob = cfg.DefaultGlob
	}

	outputDir := pc.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	strategyName := pc.strategyName
	if strategyName == "" {
		strategyName = cfg.Strategy
	}

	requests, err := config.LoadRequests(pc.requestsPath)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}

	providers, err := initObservability(observability.ModeCLI)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if shutdownErr := providers.Shutdown(ctx); shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	var scan *scanner.Scanner

	if pc.useScan {
		scan, err = scanner.New(cfg.ScannerPath, 0)
		if err != nil {
			return fmt.Errorf("init scanner: %w", err)
		}
	}

	pool := workpool.New(cfg.TokenizerPath, cfg.WorkerPoolSize, providers.Logger)
	defer pool.Shutdown()

	eng := engine.New(stattype.NewRegistry(), scan, pool, providers.Logger)

	var scanned []scanner.Variable

	if pc.useScan {
		scanned, err = runPreliminaryScan(ctx, eng, root, glob, pc.scanLimit)
		if err != nil {
			return err
		}
	}

	start := time.Now()

	batch, err := eng.SubmitParseAsync(root, glob, requests, strategyName, scanned)
	if err != nil {
		return fmt.Errorf("submit parse: %w", err)
	}

	if providers.Metrics != nil {
		providers.Metrics.RecordWorksSubmitted(ctx, strategyName, int64(len(batch.Futures)))
	}

	resultsPath, err := eng.FinalizeParsing(ctx, outputDir, batch)
	if err != nil {
		return fmt.Errorf("finalize parsing: %w", err)
	}

	if providers.Metrics != nil {
		providers.Metrics.RecordParseDuration(ctx, strategyName, time.Since(start))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s in %s\n", resultsPath, time.Since(start).Round(time.Millisecond))

	if pc.previewRows > 0 {
		return printCSVPreview(cmd, resultsPath, pc.previewRows)
	}

	return nil
}

func runPreliminaryScan(ctx context.Context, eng *engine.Engine, root, glob string, limit int) ([]scanner.Variable, error) {
	futures, err := eng.SubmitScanAsync(ctx, root, glob, limit)
	if err != nil {
		return nil, fmt.Errorf("submit scan: %w", err)
	}

	perFile := make([][]scanner.Variable, 0, len(futures))

	for _, f := range futures {
		vars, waitErr := f.Wait(ctx)
		if waitErr != nil {
			return nil, fmt.Errorf("await scan: %w", waitErr)
		}

		perFile = append(perFile, vars)
	}

	return eng.AggregateScanResults(perFile), nil
}

// printCSVPreview reads up to n data rows from the CSV at path and prints
// them as a table, annotated with a human-readable file size.
func printCSVPreview(cmd *cobra.Command, path string, n int) error {
	f, err := os.Open(path) //nolint:gosec // path is produced by csvout.Finalize, not user input
	if err != nil {
		return fmt.Errorf("open results for preview: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat results: %w", err)
	}

	scanner := bufio.NewScanner(f)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)

	if scanner.Scan() {
		tbl.AppendHeader(splitCSVRowAsRow(scanner.Text()))
	}

	for i := 0; i < n && scanner.Scan(); i++ {
		tbl.AppendRow(splitCSVRowAsRow(scanner.Text()))
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return fmt.Errorf("read results for preview: %w", scanErr)
	}

	tbl.AppendFooter(table.Row{color.New(color.FgCyan).Sprintf("%s", humanize.Bytes(uint64(info.Size())))}) //nolint:gosec // file size is never negative

	tbl.Render()

	return nil
}

func splitCSVRowAsRow(line string) table.Row {
	fields := splitCSVFields(line)
	row := make(table.Row, len(fields))

	for i, field := range fields {
		row[i] = field
	}

	return row
}

func splitCSVFields(line string) []string {
	var fields []string

	start := 0

	for i := 0; i < len(line); i++ {
		if line[i] == ',' {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}

	return append(fields, line[start:])
}
