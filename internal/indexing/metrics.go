package indexing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsChunked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ragindex",
		Subsystem: "indexing",
		Name:      "documents_chunked_total",
		Help:      "Total documents passed through the chunker.",
	})

	chunksProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ragindex",
		Subsystem: "indexing",
		Name:      "chunks_produced_total",
		Help:      "Total chunks produced, by chunking method.",
	}, []string{"method"})

	chunkLength = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ragindex",
		Subsystem: "indexing",
		Name:      "chunk_length_chars",
		Help:      "Chunk length in characters, by chunking method.",
		Buckets:   []float64{50, 100, 200, 300, 500, 750, 1000, 2000},
	}, []string{"method"})

	chunkingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ragindex",
		Subsystem: "indexing",
		Name:      "chunking_duration_seconds",
		Help:      "Time spent chunking a batch of documents.",
		Buckets:   prometheus.DefBuckets,
	})
)
