// Package store persists chunk records in a bleve index and retrieves them by
// relevance. It stands in for the vector store of the indexing pipeline:
// scoring is lexical, not embedding distance.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/charmbracelet/log"

	"github.com/ragindex/mcp-server/internal/indexing"
)

// VersionFile sits next to the index directory and records the schema version
// and the generation of the last build
const VersionFile = ".index_version"

// OpenTimeout bounds how long Open waits on the index's bolt file lock
const OpenTimeout = time.Second

// ErrEmptyQuery is returned when a search has nothing to match
var ErrEmptyQuery = errors.New("query must not be empty")

// Result is a retrieved chunk with its relevance score (higher is better)
type Result struct {
	Chunk indexing.Chunk `json:"chunk"`
	Score float64        `json:"score"`
}

// Request describes a chunk search
type Request struct {
	Query  string
	Size   int
	Source string // Restrict to one source when set
}

// NewIndexMapping maps chunks dynamically, with source and method indexed as
// exact keywords so they can be filtered.
func NewIndexMapping() mapping.IndexMapping {
	chunkMapping := bleve.NewDocumentMapping()
	chunkMapping.AddFieldMappingsAt("source", bleve.NewKeywordFieldMapping())
	chunkMapping.AddFieldMappingsAt("method", bleve.NewKeywordFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = chunkMapping
	return indexMapping
}

// Build writes chunks to a fresh index at indexPath. The index is built in a
// temporary directory and renamed into place, so a crash never leaves a half
// written index behind. Any index already at indexPath is replaced.
func Build(indexPath string, chunks []indexing.Chunk, batchSize int) error {
	if batchSize <= 0 {
		batchSize = indexing.DefaultBatchSize
	}
	tempIndexPath := indexPath + ".tmp"

	// Clean up any leftover temp index from previous crash
	os.RemoveAll(tempIndexPath)

	if err := os.MkdirAll(filepath.Dir(tempIndexPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	newIndex, err := bleve.New(tempIndexPath, NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}

	abort := func(err error) error {
		newIndex.Close()
		os.RemoveAll(tempIndexPath)
		return err
	}

	batch := newIndex.NewBatch()
	for i, chunk := range chunks {
		if err := batch.Index(chunk.ID, chunk); err != nil {
			return abort(fmt.Errorf("failed to add chunk %s to batch: %w", chunk.ID, err))
		}

		if (i+1)%batchSize == 0 {
			if err := newIndex.Batch(batch); err != nil {
				return abort(fmt.Errorf("failed to index batch: %w", err))
			}
			batch = newIndex.NewBatch()
			log.Debugf("Indexed %d/%d chunks...", i+1, len(chunks))
		}
	}

	if batch.Size() > 0 {
		if err := newIndex.Batch(batch); err != nil {
			return abort(fmt.Errorf("failed to index final batch: %w", err))
		}
	}

	if err := newIndex.Close(); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to close temp index: %w", err)
	}

	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to rename temp index: %w", err)
	}

	return WriteVersion(indexPath)
}

// Open opens an existing index for searching. Indexes are only ever written
// by Build, so every reader opens read-only and readers in other processes do
// not block each other.
func Open(indexPath string) (Index, error) {
	index, err := bleve.OpenUsing(indexPath, map[string]interface{}{
		"read_only":    true,
		"bolt_timeout": OpenTimeout.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", indexPath, err)
	}
	return Wrap(index), nil
}

// readVersionFile returns the fields of the version file: the schema version,
// then the generation stamp.
func readVersionFile(indexPath string) []string {
	data, err := os.ReadFile(versionPath(indexPath))
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}

// ReadVersion reads the schema version recorded for the index at indexPath.
// A missing or unreadable file is version 0.
func ReadVersion(indexPath string) int {
	fields := readVersionFile(indexPath)
	if len(fields) == 0 {
		return 0
	}
	version, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return version
}

// Generation returns the stamp Build recorded for the index at indexPath, or
// 0 when there is none. Each Build records a larger one, so a reader holding
// an older generation knows the index was rebuilt under it.
func Generation(indexPath string) int64 {
	fields := readVersionFile(indexPath)
	if len(fields) < 2 {
		return 0
	}
	generation, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return generation
}

// WriteVersion records the current schema version and a new generation for
// the index at indexPath
func WriteVersion(indexPath string) error {
	path := versionPath(indexPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create version directory: %w", err)
	}
	generation := max(time.Now().UnixNano(), Generation(indexPath)+1)
	content := fmt.Sprintf("%d %d\n", indexing.IndexSchemaVersion, generation)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write index version: %w", err)
	}
	return nil
}

// Remove deletes the index and its version file
func Remove(indexPath string) {
	os.RemoveAll(indexPath)
	os.Remove(versionPath(indexPath))
}

func versionPath(indexPath string) string {
	return filepath.Join(filepath.Dir(indexPath), VersionFile)
}

// Search runs a match query against index and converts hits back to chunks
func Search(index Index, req Request) ([]Result, uint64, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, 0, ErrEmptyQuery
	}

	var q query.Query = bleve.NewMatchQuery(req.Query)
	if req.Source != "" {
		sourceQuery := bleve.NewTermQuery(req.Source)
		sourceQuery.SetField("source")
		q = bleve.NewConjunctionQuery(q, sourceQuery)
	}

	search := bleve.NewSearchRequest(q)
	search.Size = req.Size
	search.Fields = []string{"*"}

	searchResults, err := index.Search(search)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, Result{
			Chunk: chunkFromFields(hit.ID, hit.Fields),
			Score: hit.Score,
		})
	}
	return results, searchResults.Total, nil
}

// chunkFromFields rebuilds a chunk from stored fields
func chunkFromFields(id string, fields map[string]interface{}) indexing.Chunk {
	chunk := indexing.Chunk{ID: id}

	if source, ok := fields["source"].(string); ok {
		chunk.Source = source
	}
	if content, ok := fields["content"].(string); ok {
		chunk.Content = content
	}
	if method, ok := fields["method"].(string); ok {
		chunk.Method = method
	}
	if position, ok := fields["position"].(float64); ok {
		chunk.Position = int(position)
	}
	if tokenCount, ok := fields["token_count"].(float64); ok {
		chunk.TokenCount = int(tokenCount)
	}

	// A single-element array comes back as a plain string
	switch keywords := fields["keywords"].(type) {
	case string:
		chunk.Keywords = []string{keywords}
	case []interface{}:
		chunk.Keywords = make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kwStr, ok := kw.(string); ok {
				chunk.Keywords = append(chunk.Keywords, kwStr)
			}
		}
	}

	return chunk
}
