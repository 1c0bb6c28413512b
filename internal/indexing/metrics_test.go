package indexing

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/chunking"
)

func TestBuildChunks_RecordsMetrics(t *testing.T) {
	docsBefore := testutil.ToFloat64(documentsChunked)
	chunksBefore := testutil.ToFloat64(chunksProduced.WithLabelValues("sentence"))

	docs := []Document{
		{Source: "a.txt", Text: "One. Two. Three."},
		{Source: "b.txt", Text: "Four."},
	}
	chunks, err := BuildChunks(context.Background(), docs, chunking.Config{Size: 5, Overlap: 0, Method: chunking.MethodSentence})
	require.NoError(t, err)
	require.Len(t, chunks, 5) // "Three." is cut into "Three" and "."

	assert.Equal(t, docsBefore+2, testutil.ToFloat64(documentsChunked))
	assert.Equal(t, chunksBefore+5, testutil.ToFloat64(chunksProduced.WithLabelValues("sentence")))
}
