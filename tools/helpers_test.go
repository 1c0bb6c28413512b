package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/config"
)

// setupDataDir points the tools at a fresh data directory and restores the
// package state when the test ends
func setupDataDir(t *testing.T) config.Config {
	t.Helper()

	prevSettings, prevDir, prevMgr, prevClient := settings, dataDir, indexMgr, llmClient

	cfg := config.Default()
	cfg.Index.DataDir = t.TempDir()
	require.NoError(t, Configure(cfg))
	indexMgr = &indexHolder{}

	t.Cleanup(func() {
		CloseSearch()
		settings, dataDir, indexMgr, llmClient = prevSettings, prevDir, prevMgr, prevClient
	})
	return cfg
}

// writeDocs writes files into a new directory and returns its path
func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}
