package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ragindex/mcp-server/internal/chunking"
	"github.com/ragindex/mcp-server/internal/config"
	"github.com/ragindex/mcp-server/internal/rag"
)

var (
	settings  = config.Default()
	dataDir   = settings.Index.DataDir // Data directory for the search index and lock file
	llmClient *rag.Client
)

// Configure applies loaded settings to the tools. It must run before the
// tools are registered.
func Configure(cfg config.Config) error {
	if err := os.MkdirAll(filepath.Join(cfg.Index.DataDir, "search"), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	settings = cfg
	dataDir = cfg.Index.DataDir
	llmClient = rag.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)

	log.Info("Data directory ready", "path", dataDir)
	return nil
}

func answerClient() *rag.Client {
	if llmClient == nil {
		llmClient = rag.NewClient(settings.LLM.BaseURL, settings.LLM.Model, settings.LLM.Timeout)
	}
	return llmClient
}

// resolveChunkConfig fills omitted tool inputs from the configured defaults
// and validates the result.
func resolveChunkConfig(size, overlap *int, method string) (chunking.Config, error) {
	cfg := settings.Chunking
	if size != nil {
		cfg.Size = *size
	}
	if overlap != nil {
		cfg.Overlap = *overlap
	}
	if method != "" {
		parsed, err := chunking.ParseMethod(method)
		if err != nil {
			return chunking.Config{}, err
		}
		cfg.Method = parsed
	}
	if err := cfg.Validate(); err != nil {
		return chunking.Config{}, err
	}
	return cfg, nil
}

// configErrorCode maps a chunking validation error to a stable error code
func configErrorCode(err error) string {
	switch {
	case errors.Is(err, chunking.ErrInvalidChunkSize):
		return "INVALID_CHUNK_SIZE"
	case errors.Is(err, chunking.ErrNegativeOverlap):
		return "NEGATIVE_OVERLAP"
	case errors.Is(err, chunking.ErrUnknownMethod):
		return "UNKNOWN_METHOD"
	default:
		return "INVALID_CONFIG"
	}
}
