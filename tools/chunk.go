package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragindex/mcp-server/internal/chunking"
)

// ChunkTextInput defines input for chunk_text tool
type ChunkTextInput struct {
	Text      string `json:"text" jsonschema:"Text to split into chunks"`
	ChunkSize *int   `json:"chunk_size,omitempty" jsonschema:"Maximum chunk length in characters (optional, defaults to the server setting)"`
	Overlap   *int   `json:"overlap,omitempty" jsonschema:"Characters shared between consecutive chunks (optional, defaults to the server setting)"`
	Method    string `json:"method,omitempty" jsonschema:"Chunking strategy: char or sentence (optional, defaults to the server setting)"`
}

// ChunkTextOutput defines output for chunk_text tool
type ChunkTextOutput struct {
	Chunks    []string `json:"chunks"`
	Count     int      `json:"count"`
	Method    string   `json:"method"`
	ChunkSize int      `json:"chunk_size"`
	Overlap   int      `json:"overlap"`
}

// ChunkText splits text with the requested strategy without touching the index
func ChunkText(ctx context.Context, req *mcp.CallToolRequest, input ChunkTextInput) (*mcp.CallToolResult, ChunkTextOutput, error) {
	cfg, err := resolveChunkConfig(input.ChunkSize, input.Overlap, input.Method)
	if err != nil {
		return nil, ChunkTextOutput{}, err
	}

	chunks, err := chunking.ChunkText(input.Text, cfg.Size, cfg.Overlap, string(cfg.Method))
	if err != nil {
		return nil, ChunkTextOutput{}, fmt.Errorf("chunking failed: %w", err)
	}
	if chunks == nil {
		chunks = []string{}
	}

	log.Debug("Chunked text", "config", cfg, "chunks", len(chunks))

	return nil, ChunkTextOutput{
		Chunks:    chunks,
		Count:     len(chunks),
		Method:    string(cfg.Method),
		ChunkSize: cfg.Size,
		Overlap:   cfg.Overlap,
	}, nil
}

// RegisterChunkTools registers the chunking tool
func RegisterChunkTools(server *mcp.Server) error {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "chunk_text",
			Description: "Split text into ordered, overlapping chunks. Method 'char' cuts fixed-width character windows; 'sentence' packs whole sentences up to chunk_size and carries trailing sentences over as overlap.",
		},
		ChunkText,
	)

	return nil
}
