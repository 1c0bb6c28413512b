package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/chunking"
	"github.com/ragindex/mcp-server/internal/indexing"
	"github.com/ragindex/mcp-server/internal/store"
)

func buildTestIndex(t *testing.T, batchSize int) (string, []indexing.Chunk) {
	t.Helper()

	docs := []indexing.Document{
		{Source: "fruit.txt", Text: "Apples are red. Bananas are yellow. Cherries are small and red."},
		{Source: "space.txt", Text: "Mars is the red planet. Jupiter is a gas giant. Saturn has rings."},
		{Source: "code.txt", Text: "Go has goroutines. Channels connect goroutines."},
	}
	chunks, err := indexing.BuildChunks(context.Background(), docs, chunking.Config{Size: 40, Overlap: 0, Method: chunking.MethodSentence})
	require.NoError(t, err)

	indexPath := filepath.Join(t.TempDir(), "search", "index")
	require.NoError(t, store.Build(indexPath, chunks, batchSize))
	return indexPath, chunks
}

func TestBuildAndSearch(t *testing.T) {
	indexPath, chunks := buildTestIndex(t, 2)

	index, err := store.Open(indexPath)
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(chunks)), count)

	results, total, err := store.Search(index, store.Request{Query: "goroutines", Size: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, uint64(len(results)), total)
	for _, r := range results {
		assert.Equal(t, "code.txt", r.Chunk.Source)
		assert.Contains(t, r.Chunk.Content, "goroutines")
		assert.Equal(t, "sentence", r.Chunk.Method)
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearch_SourceFilter(t *testing.T) {
	indexPath, _ := buildTestIndex(t, 100)

	index, err := store.Open(indexPath)
	require.NoError(t, err)
	defer index.Close()

	all, _, err := store.Search(index, store.Request{Query: "red", Size: 10})
	require.NoError(t, err)
	sources := map[string]bool{}
	for _, r := range all {
		sources[r.Chunk.Source] = true
	}
	assert.True(t, sources["fruit.txt"])
	assert.True(t, sources["space.txt"])

	filtered, total, err := store.Search(index, store.Request{Query: "red", Size: 10, Source: "space.txt"})
	require.NoError(t, err)
	require.NotEmpty(t, filtered)
	assert.Equal(t, uint64(len(filtered)), total)
	for _, r := range filtered {
		assert.Equal(t, "space.txt", r.Chunk.Source)
	}
}

func TestSearch_RoundTripsChunkFields(t *testing.T) {
	indexPath, chunks := buildTestIndex(t, 100)

	index, err := store.Open(indexPath)
	require.NoError(t, err)
	defer index.Close()

	results, _, err := store.Search(index, store.Request{Query: "Saturn rings", Size: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var want indexing.Chunk
	for _, c := range chunks {
		if c.ID == results[0].Chunk.ID {
			want = c
		}
	}
	require.NotEmpty(t, want.ID)
	assert.Equal(t, want, results[0].Chunk)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, _, err := store.Search(nil, store.Request{Query: "   "})
	assert.ErrorIs(t, err, store.ErrEmptyQuery)
}

func TestBuild_ReplacesExistingIndex(t *testing.T) {
	indexPath, _ := buildTestIndex(t, 100)

	replacement := []indexing.Chunk{{Source: "only.txt", Content: "single replacement chunk"}}
	indexing.EnrichMetadata(&replacement[0])
	require.NoError(t, store.Build(indexPath, replacement, 0))

	_, err := os.Stat(indexPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp index must be renamed away")

	index, err := store.Open(indexPath)
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestVersion(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "search", "index")
	assert.Equal(t, 0, store.ReadVersion(indexPath))

	require.NoError(t, store.WriteVersion(indexPath))
	assert.Equal(t, indexing.IndexSchemaVersion, store.ReadVersion(indexPath))

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(indexPath), store.VersionFile), []byte("garbage"), 0644))
	assert.Equal(t, 0, store.ReadVersion(indexPath))

	store.Remove(indexPath)
	assert.Equal(t, 0, store.ReadVersion(indexPath))
}

func TestGeneration(t *testing.T) {
	indexPath, chunks := buildTestIndex(t, 100)

	first := store.Generation(indexPath)
	assert.Positive(t, first)

	require.NoError(t, store.Build(indexPath, chunks, 100))
	assert.Greater(t, store.Generation(indexPath), first, "every build records a newer generation")
	assert.Equal(t, indexing.IndexSchemaVersion, store.ReadVersion(indexPath))

	store.Remove(indexPath)
	assert.Zero(t, store.Generation(indexPath))
}

func TestOpen_ReadersDoNotBlockEachOther(t *testing.T) {
	indexPath, chunks := buildTestIndex(t, 100)

	live, err := store.Open(indexPath)
	require.NoError(t, err)
	defer live.Close()

	start := time.Now()
	other, err := store.Open(indexPath)
	require.NoError(t, err)
	defer other.Close()
	assert.Less(t, time.Since(start), store.OpenTimeout)

	count, err := other.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(chunks)), count)
}

func TestOpen_TimesOutOnWriter(t *testing.T) {
	indexPath, _ := buildTestIndex(t, 100)

	writer, err := bleve.Open(indexPath)
	require.NoError(t, err)
	defer writer.Close()

	done := make(chan error, 1)
	go func() {
		index, err := store.Open(indexPath)
		if err == nil {
			index.Close()
		}
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * store.OpenTimeout):
		t.Fatal("Open blocked on a held index")
	}
}

func TestBuild_UnderOpenReader(t *testing.T) {
	indexPath, _ := buildTestIndex(t, 100)

	live, err := store.Open(indexPath)
	require.NoError(t, err)
	defer live.Close()

	fresh := []indexing.Chunk{{ID: indexing.ChunkID("new.txt", 0), Source: "new.txt", Method: "char", Content: "fresh content"}}
	require.NoError(t, store.Build(indexPath, fresh, 100))

	reopened, err := store.Open(indexPath)
	require.NoError(t, err)
	defer reopened.Close()

	results, _, err := store.Search(reopened, store.Request{Query: "fresh", Size: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new.txt", results[0].Chunk.Source)
}

func TestOpen_Missing(t *testing.T) {
	_, err := store.Open(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
