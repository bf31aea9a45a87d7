// Command ring5 catalogs and parses gem5-style statistics dumps, turning
// directories of text stats files into tidy CSV results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikiitin/ring5/cmd/ring5/commands"
	"github.com/nikiitin/ring5/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "ring5",
		Short: "ring5 - gem5 statistics ingestion",
		Long: `ring5 scans and parses gem5-style stats dumps into CSV.

Commands:
  scan      Catalog the variables present in a directory of stats files
  parse     Parse stats files against a Stat Request document and emit a CSV
  mcp       Start an MCP server exposing scan/parse/finalize as tools
  version   Print the ring5 version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
