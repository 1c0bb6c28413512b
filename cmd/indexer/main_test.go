package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIndexerCommands(t *testing.T) {
	t.Setenv("RAGINDEX_DATA_DIR", t.TempDir())
	t.Setenv("RAGINDEX_CONFIG", "")

	docs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "fruit.txt"), []byte("Apples are red. Bananas are yellow."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "go.txt"), []byte("Goroutines are cheap."), 0644))

	t.Run("build", func(t *testing.T) {
		out, err := execute(t, "build", docs, "--method", "sentence", "--size", "40", "--overlap", "0")
		require.NoError(t, err)
		assert.Contains(t, out, "Indexed 2 chunks from 2 documents")
		assert.Contains(t, out, "method=sentence size=40 overlap=0")
		assert.DirExists(t, resolveIndexDir())
	})

	t.Run("search", func(t *testing.T) {
		out, err := execute(t, "search", "bananas", "--json")
		require.NoError(t, err)

		var results []store.Result
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "fruit.txt", results[0].Chunk.Source)
		assert.Equal(t, "Apples are red. Bananas are yellow.", results[0].Chunk.Content)
	})

	t.Run("chunk", func(t *testing.T) {
		out, err := execute(t, "chunk", filepath.Join(docs, "go.txt"), "--size", "10", "--overlap", "0", "--method", "char", "--json")
		require.NoError(t, err)

		var chunks []string
		require.NoError(t, json.Unmarshal([]byte(out), &chunks))
		assert.Equal(t, []string{"Goroutines", " are cheap", "."}, chunks)
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := execute(t, "chunk", filepath.Join(docs, "go.txt"), "--method", "paragraph")
		assert.ErrorContains(t, err, "unknown chunking method")
	})

	t.Run("build waits for a rebuild in another process", func(t *testing.T) {
		lock, err := store.AcquireLock(context.Background(), resolveIndexDir(), time.Second)
		require.NoError(t, err)
		defer lock.Release()

		_, err = execute(t, "build", docs, "--method", "sentence", "--size", "40", "--overlap", "0", "--lock-timeout", "200ms")
		assert.ErrorContains(t, err, "timeout waiting for index lock")
	})

	t.Run("search while another reader holds the index", func(t *testing.T) {
		live, err := store.Open(resolveIndexDir())
		require.NoError(t, err)
		defer live.Close()

		out, err := execute(t, "search", "bananas", "--json")
		require.NoError(t, err)

		var results []store.Result
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		assert.Len(t, results, 1)
	})

	t.Run("missing index", func(t *testing.T) {
		_, err := execute(t, "search", "anything", "--index-dir", filepath.Join(t.TempDir(), "none"))
		assert.Error(t, err)
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n  text", 60))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}
