package main

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ragindex/mcp-server/internal/chunking"
	"github.com/ragindex/mcp-server/internal/indexing"
)

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Print the chunks of a document without indexing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chunkCfg, err := chunkConfig(cmd)
		if err != nil {
			return err
		}

		docs, err := indexing.LoadDocuments(args)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no %s documents found in %s", indexing.DocumentExt, args[0])
		}

		out := cmd.OutOrStdout()
		var chunks []string
		for _, doc := range docs {
			docChunks, err := chunking.ChunkText(doc.Text, chunkCfg.Size, chunkCfg.Overlap, string(chunkCfg.Method))
			if err != nil {
				return err
			}
			chunks = append(chunks, docChunks...)
		}

		if chunkJSON {
			if chunks == nil {
				chunks = []string{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(chunks)
		}

		for i, chunk := range chunks {
			fmt.Fprintf(out, "--- chunk %d (%d chars) ---\n%s\n", i, utf8.RuneCountInString(chunk), chunk)
		}
		fmt.Fprintf(out, "%d chunks (%s)\n", len(chunks), chunkCfg)
		return nil
	},
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "print chunks as a JSON array")
}

// chunkConfig applies the chunking flags that were set over the loaded config
func chunkConfig(cmd *cobra.Command) (chunking.Config, error) {
	chunkCfg := cfg.Chunking
	if cmd.Flags().Changed("size") {
		chunkCfg.Size = chunkSize
	}
	if cmd.Flags().Changed("overlap") {
		chunkCfg.Overlap = chunkOverlap
	}
	if cmd.Flags().Changed("method") {
		method, err := chunking.ParseMethod(chunkMethod)
		if err != nil {
			return chunking.Config{}, err
		}
		chunkCfg.Method = method
	}
	if err := chunkCfg.Validate(); err != nil {
		return chunking.Config{}, err
	}
	return chunkCfg, nil
}
