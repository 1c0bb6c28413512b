package indexing

import (
	"context"
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ragindex/mcp-server/internal/chunking"
)

// BuildChunks chunks every document with cfg and pairs each chunk with its
// source metadata. Documents are chunked concurrently; the result keeps
// document order and, within a document, chunk order.
func BuildChunks(ctx context.Context, docs []Document, cfg chunking.Config) ([]Chunk, error) {
	chunker, err := chunking.New(cfg)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	perDoc := make([][]string, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perDoc[i] = chunker.Chunk(doc.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunking interrupted: %w", err)
	}

	total := 0
	for _, texts := range perDoc {
		total += len(texts)
	}

	method := string(cfg.Method)
	chunks := make([]Chunk, 0, total)
	for i, texts := range perDoc {
		for position, text := range texts {
			chunk := Chunk{
				Source:   docs[i].Source,
				Position: position,
				Method:   method,
				Content:  text,
			}
			EnrichMetadata(&chunk)
			chunks = append(chunks, chunk)

			chunkLength.WithLabelValues(method).Observe(float64(utf8.RuneCountInString(text)))
		}
	}

	documentsChunked.Add(float64(len(docs)))
	chunksProduced.WithLabelValues(method).Add(float64(len(chunks)))
	chunkingDuration.Observe(time.Since(startTime).Seconds())

	return chunks, nil
}

// AverageTokens calculates the average token count across chunks
func AverageTokens(chunks []Chunk) int {
	if len(chunks) == 0 {
		return 0
	}
	total := 0
	for _, chunk := range chunks {
		total += chunk.TokenCount
	}
	return total / len(chunks)
}

// CountSources returns the number of distinct sources among chunks
func CountSources(chunks []Chunk) int {
	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		seen[chunk.Source] = struct{}{}
	}
	return len(seen)
}
