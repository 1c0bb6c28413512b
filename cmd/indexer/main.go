// indexer builds and queries the ragindex chunk index from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ragindex/mcp-server/internal/config"
	"github.com/ragindex/mcp-server/internal/logger"
)

// Global flags
var (
	configPath string
	logLevel   string
	logJSON    bool
	indexDir   string
)

// cfg is loaded once by the root command before any subcommand runs
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Chunk text documents and manage the ragindex search index",
	Long: `indexer chunks .txt documents and writes them to the same index the
ragindex MCP server searches.

Examples:
  indexer build ./docs                       # Index every .txt file under ./docs
  indexer build notes.txt --method sentence  # Sentence chunking for one file
  indexer chunk notes.txt --size 200 --json  # Print chunks without indexing
  indexer search "what is a chunk" --top-k 3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			loaded.Log.JSON = logJSON
		}
		cfg = loaded

		logger.Setup(cfg.Log.Level, cfg.Log.JSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $RAGINDEX_CONFIG or ./ragindex.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "index directory (default <data_dir>/search/index)")

	rootCmd.AddCommand(buildCmd, chunkCmd, searchCmd)
}

// resolveIndexDir returns the index location shared with the MCP server
func resolveIndexDir() string {
	if indexDir != "" {
		return indexDir
	}
	return filepath.Join(cfg.Index.DataDir, "search", "index")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
