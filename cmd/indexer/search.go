package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ragindex/mcp-server/internal/store"
)

// Search command flags
var (
	searchTopK   int
	searchSource string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK := cfg.Search.TopK
		if cmd.Flags().Changed("top-k") {
			topK = searchTopK
		}

		index, err := store.Open(resolveIndexDir())
		if err != nil {
			return fmt.Errorf("%w (run indexer build first)", err)
		}
		defer index.Close()

		query := strings.Join(args, " ")
		results, total, err := store.Search(index, store.Request{
			Query:  query,
			Size:   topK,
			Source: searchSource,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		fmt.Fprintf(out, "%d of %d hits for %q\n\n", len(results), total, query)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tSOURCE\tPOS\tCONTENT")
		for _, r := range results {
			fmt.Fprintf(w, "%.3f\t%s\t%d\t%s\n", r.Score, r.Chunk.Source, r.Chunk.Position, preview(r.Chunk.Content, 60))
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "number of chunks to return (default from config)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "only return chunks from this source file")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

// preview flattens content to one line of at most n characters
func preview(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n-3]) + "..."
}
