package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nikiitin/ring5/internal/ring5/config"
	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/observability"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

// ScanCommand holds configuration and dependencies for the scan command.
type ScanCommand struct {
	root       string
	glob       string
	limit      int
	configFile string
	noColor    bool
}

// NewScanCommand creates the scan subcommand: catalogs the variables
// present in a directory of stats files without parsing any values.
func NewScanCommand() *cobra.Command {
	sc := &ScanCommand{}

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Catalog the variables present in a directory of stats files",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.glob, "glob", "", "Filename glob identifying stats files (default from config)")
	cmd.Flags().IntVar(&sc.limit, "limit", 0, "Maximum concurrent file scans (0 = unbounded)")
	cmd.Flags().StringVar(&sc.configFile, "config", "", "Configuration file path")
	cmd.Flags().BoolVar(&sc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (sc *ScanCommand) run(cmd *cobra.Command, args []string) error {
	color.NoColor = sc.noColor //nolint:reassign // intentional override of library global

	cfg, err := config.LoadConfig(sc.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	glob := sc.glob
	if glob == "" {
		glob = cfg.DefaultGlob
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

	scan, err := scanner.New(cfg.ScannerPath, 0)
	if err != nil {
		return fmt.Errorf("init scanner: %w", err)
	}

	eng := engine.New(stattype.NewRegistry(), scan, nil, providers.Logger)

	futures, err := eng.SubmitScanAsync(ctx, root, glob, sc.limit)
	if err != nil {
		return fmt.Errorf("submit scan: %w", err)
	}

	perFile := make([][]scanner.Variable, 0, len(futures))

	for _, f := range futures {
		vars, waitErr := f.Wait(ctx)
		if waitErr != nil {
			return fmt.Errorf("await scan: %w", waitErr)
		}

		perFile = append(perFile, vars)
	}

	aggregated := eng.AggregateScanResults(perFile)

	printScanTable(cmd, aggregated, len(futures))

	return nil
}

func printScanTable(cmd *cobra.Command, vars []scanner.Variable, fileCount int) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Name", "Kind", "Entries", "Range"})

	for _, v := range vars {
		rng := ""
		if v.HasRange {
			rng = fmt.Sprintf("%d..%d", v.Minimum, v.Maximum)
		}

		tbl.AppendRow(table.Row{v.Name, kindLabel(v.Kind), humanize.Comma(int64(len(v.Entries))), rng})
	}

	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(len(vars))), fmt.Sprintf("%d files", fileCount), ""})
	tbl.Render()
}

func kindLabel(kind stattype.Kind) string {
	switch kind {
	case stattype.KindScalar:
		return color.New(color.FgGreen).Sprint(kind)
	case stattype.KindVector:
		return color.New(color.FgCyan).Sprint(kind)
	case stattype.KindDistribution, stattype.KindHistogram:
		return color.New(color.FgYellow).Sprint(kind)
	case stattype.KindConfiguration:
		return color.New(color.FgMagenta).Sprint(kind)
	default:
		return string(kind)
	}
}
