package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragindex/mcp-server/internal/indexing"
	"github.com/ragindex/mcp-server/internal/store"
)

const (
	indexDir = "search/index"
	maxTopK  = 20
)

// ErrNoIndex is returned by searches before any documents were indexed
var ErrNoIndex = errors.New("no index available, run index_documents first")

// SearchDocumentsInput defines input for search_documents tool
type SearchDocumentsInput struct {
	Query  string `json:"query" jsonschema:"Search query"`
	TopK   int    `json:"top_k,omitempty" jsonschema:"Maximum number of chunks to return (optional, defaults to the server setting, capped at 20)"`
	Source string `json:"source,omitempty" jsonschema:"Only return chunks from this source file (optional)"`
}

// SearchDocumentsOutput defines output for search_documents tool
type SearchDocumentsOutput struct {
	Results   []store.Result `json:"results"`
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
}

// IndexDocumentsInput defines input for index_documents tool
type IndexDocumentsInput struct {
	Paths     []string `json:"paths" jsonschema:"Text files or directories of .txt files to index"`
	ChunkSize *int     `json:"chunk_size,omitempty" jsonschema:"Maximum chunk length in characters (optional)"`
	Overlap   *int     `json:"overlap,omitempty" jsonschema:"Characters shared between consecutive chunks (optional)"`
	Method    string   `json:"method,omitempty" jsonschema:"Chunking strategy: char or sentence (optional)"`
}

// IndexDocumentsOutput defines output for index_documents tool
type IndexDocumentsOutput struct {
	Documents     int    `json:"documents"`
	ChunksIndexed int    `json:"chunks_indexed"`
	AvgTokens     int    `json:"avg_tokens"`
	Config        string `json:"config"`
	Message       string `json:"message"`
}

// IndexStatusInput defines input for index_status tool
type IndexStatusInput struct{}

// IndexStatusOutput defines output for index_status tool
type IndexStatusOutput struct {
	DataDir       string `json:"data_dir"`
	Indexed       bool   `json:"indexed"`
	Chunks        int    `json:"chunks"`
	SchemaVersion int    `json:"schema_version"`
	Defaults      string `json:"defaults"`
	Model         string `json:"model"`
}

// liveIndex is one generation of the chunk index. Searches hold the read
// lock; retiring takes the write lock, so it waits for in-flight searches.
type liveIndex struct {
	index store.Index
	// generation is the on-disk build stamp, 0 when not tracked
	generation int64
	mu         sync.RWMutex
	retired    bool
}

// retire marks the generation unusable and closes its index
func (l *liveIndex) retire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retired = true
	return l.index.Close()
}

// indexHolder manages concurrent access to the chunk index
type indexHolder struct {
	// current holds the active generation (atomic access for lock-free reads)
	current atomic.Pointer[liveIndex]

	// refreshMu serializes rebuilds and first opens
	// NOT used for searches
	refreshMu sync.Mutex
}

var indexMgr = &indexHolder{}

// acquire returns the live index, or nil, and a release func that must be
// called once the caller is done with it
func (h *indexHolder) acquire() (store.Index, func()) {
	for {
		live := h.current.Load()
		if live == nil {
			return nil, func() {}
		}
		live.mu.RLock()
		if !live.retired {
			return live.index, live.mu.RUnlock
		}
		// Swapped out between Load and RLock, pick up the replacement
		live.mu.RUnlock()
	}
}

// swap installs index as the live one and closes the previous index in the
// background once in-flight searches are done
func (h *indexHolder) swap(index store.Index) {
	h.swapGeneration(index, 0)
}

// swapGeneration is swap for an index opened from disk at generation
func (h *indexHolder) swapGeneration(index store.Index, generation int64) {
	old := h.current.Swap(&liveIndex{index: index, generation: generation})
	if old == nil {
		return
	}

	go func() {
		waitStart := time.Now()
		if err := old.retire(); err != nil {
			log.Warn("Error closing old index", "err", err)
			return
		}
		log.Debug("Old index closed", "waited", time.Since(waitStart).Round(time.Millisecond))
	}()
}

// generation returns the build stamp of the live index, 0 when there is
// none or it is not tracked
func (h *indexHolder) generation() int64 {
	if live := h.current.Load(); live != nil {
		return live.generation
	}
	return 0
}

// close retires the live index, waiting for in-flight searches
func (h *indexHolder) close() error {
	old := h.current.Swap(nil)
	if old == nil {
		return nil
	}
	return old.retire()
}

func indexPath() string {
	return filepath.Join(dataDir, indexDir)
}

// InitializeSearch opens the index left by a previous run, if any. An index
// written with another schema version is removed.
func InitializeSearch() error {
	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	// A concurrent caller or a rebuild may have installed one already
	if indexMgr.current.Load() != nil {
		return nil
	}

	startTime := time.Now()
	path := indexPath()

	if _, err := os.Stat(path); err != nil {
		log.Info("No chunk index yet, use index_documents to build one", "path", path)
		return nil
	}

	if version := store.ReadVersion(path); version != indexing.IndexSchemaVersion {
		log.Warn("Index schema version mismatch, invalidating old index",
			"have", version, "want", indexing.IndexSchemaVersion)
		store.Remove(path)
		return nil
	}

	generation := store.Generation(path)
	index, err := store.Open(path)
	if err != nil {
		log.Warn("Local index corrupted, removing", "err", err)
		store.Remove(path)
		return nil
	}

	indexMgr.swapGeneration(index, generation)
	count, _ := index.DocCount()
	log.Info("Search initialized", "chunks", count, "elapsed", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// rebuildIndex replaces the index with chunks of the documents under paths
func rebuildIndex(ctx context.Context, paths []string, size, overlap *int, method string) (IndexDocumentsOutput, error) {
	startTime := time.Now()

	cfg, err := resolveChunkConfig(size, overlap, method)
	if err != nil {
		return IndexDocumentsOutput{}, err
	}

	docs, err := indexing.LoadDocuments(paths)
	if err != nil {
		return IndexDocumentsOutput{}, err
	}
	if len(docs) == 0 {
		return IndexDocumentsOutput{}, fmt.Errorf("no %s documents found in %v", indexing.DocumentExt, paths)
	}

	chunks, err := indexing.BuildChunks(ctx, docs, cfg)
	if err != nil {
		return IndexDocumentsOutput{}, err
	}
	log.Info("Chunked documents", "documents", len(docs), "chunks", len(chunks),
		"avg_tokens", indexing.AverageTokens(chunks), "config", cfg)

	// Serialize rebuilds within this process, then across processes
	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	if err := acquireLock(ctx); err != nil {
		return IndexDocumentsOutput{}, fmt.Errorf("failed to acquire lock for rebuild: %w", err)
	}
	defer func() {
		if err := releaseLock(); err != nil {
			log.Warn("Error releasing lock", "err", err)
		}
	}()

	path := indexPath()
	if err := store.Build(path, chunks, settings.Index.BatchSize); err != nil {
		return IndexDocumentsOutput{}, fmt.Errorf("indexing failed: %w", err)
	}

	index, err := store.Open(path)
	if err != nil {
		return IndexDocumentsOutput{}, err
	}
	indexMgr.swapGeneration(index, store.Generation(path))

	elapsed := time.Since(startTime).Round(time.Millisecond)
	log.Info("Index rebuilt, searches now using new index", "chunks", len(chunks), "elapsed", elapsed)

	return IndexDocumentsOutput{
		Documents:     len(docs),
		ChunksIndexed: len(chunks),
		AvgTokens:     indexing.AverageTokens(chunks),
		Config:        cfg.String(),
		Message:       fmt.Sprintf("Indexed %d chunks from %d documents in %v", len(chunks), len(docs), elapsed),
	}, nil
}

// reloadIfStale swaps in the index when another process, such as the indexer
// CLI, rebuilt it since it was opened. A rebuild still holding the lock
// leaves the current generation in place.
func reloadIfStale(ctx context.Context) {
	live := indexMgr.generation()
	if live == 0 || store.Generation(indexPath()) <= live {
		return
	}

	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	path := indexPath()
	live = indexMgr.generation()
	if live == 0 || store.Generation(path) <= live {
		return
	}

	lock, err := store.AcquireLock(ctx, path, reloadWait)
	if err != nil {
		log.Debug("Index rebuild in progress elsewhere, keeping current generation", "err", err)
		return
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("Error releasing lock", "err", err)
		}
	}()

	if store.ReadVersion(path) != indexing.IndexSchemaVersion {
		log.Warn("Rebuilt index has another schema version, keeping current generation",
			"have", store.ReadVersion(path), "want", indexing.IndexSchemaVersion)
		return
	}
	generation := store.Generation(path)
	index, err := store.Open(path)
	if err != nil {
		log.Warn("Failed to reopen rebuilt index", "err", err)
		return
	}
	indexMgr.swapGeneration(index, generation)
	log.Info("Index rebuilt by another process, reloaded", "generation", generation)
}

// searchIndex runs req against the live index, initializing it on first use
// and reloading it after an external rebuild
func searchIndex(ctx context.Context, req store.Request) ([]store.Result, uint64, error) {
	if req.Size <= 0 {
		req.Size = settings.Search.TopK
	}
	req.Size = min(req.Size, maxTopK)

	reloadIfStale(ctx)
	index, release := indexMgr.acquire()
	if index == nil {
		log.Debug("Index not initialized, initializing now...")
		if err := InitializeSearch(); err != nil {
			return nil, 0, fmt.Errorf("failed to initialize search: %w", err)
		}
		index, release = indexMgr.acquire()
		if index == nil {
			return nil, 0, ErrNoIndex
		}
	}
	defer release()

	return store.Search(index, req)
}

// IndexDocuments rebuilds the index from the given documents
func IndexDocuments(ctx context.Context, req *mcp.CallToolRequest, input IndexDocumentsInput) (*mcp.CallToolResult, IndexDocumentsOutput, error) {
	if len(input.Paths) == 0 {
		return nil, IndexDocumentsOutput{}, errors.New("paths must not be empty")
	}

	output, err := rebuildIndex(ctx, input.Paths, input.ChunkSize, input.Overlap, input.Method)
	if err != nil {
		return nil, IndexDocumentsOutput{}, fmt.Errorf("rebuild failed: %w", err)
	}
	return nil, output, nil
}

// SearchDocuments searches the indexed chunks
func SearchDocuments(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentsInput) (*mcp.CallToolResult, SearchDocumentsOutput, error) {
	results, total, err := searchIndex(ctx, store.Request{
		Query:  input.Query,
		Size:   input.TopK,
		Source: input.Source,
	})
	if err != nil {
		return nil, SearchDocumentsOutput{}, err
	}

	return nil, SearchDocumentsOutput{
		Results:   results,
		Query:     input.Query,
		TotalHits: int(total),
	}, nil
}

// IndexStatus reports what is indexed and the defaults new chunks would use
func IndexStatus(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (*mcp.CallToolResult, IndexStatusOutput, error) {
	output := IndexStatusOutput{
		DataDir:       dataDir,
		SchemaVersion: store.ReadVersion(indexPath()),
		Defaults:      settings.Chunking.String(),
		Model:         settings.LLM.Model,
	}

	index, release := indexMgr.acquire()
	defer release()
	if index != nil {
		count, err := index.DocCount()
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to count chunks: %w", err)
		}
		output.Indexed = true
		output.Chunks = int(count)
	}

	return nil, output, nil
}

// RegisterSearchTools registers the indexing and search tools
func RegisterSearchTools(server *mcp.Server) error {
	if err := InitializeSearch(); err != nil {
		log.Warn("Search initialization failed, will retry on first use", "err", err)
	}

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "index_documents",
			Description: "Chunk .txt documents (files or directories) and rebuild the search index from scratch. Chunking settings are optional and default to the server configuration.",
		},
		IndexDocuments,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_documents",
			Description: "Full-text search over the indexed chunks. Returns the top relevant chunks with their source, position and score.",
		},
		SearchDocuments,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "index_status",
			Description: "Report the data directory, number of indexed chunks, index schema version and default chunking settings.",
		},
		IndexStatus,
	)

	return nil
}

// CloseSearch closes the search index and releases the lock
func CloseSearch() error {
	closeErr := indexMgr.close()
	if closeErr != nil {
		log.Error("Error closing index", "err", closeErr)
	}

	// Always attempt to release inter-process lock, even if close failed
	if err := releaseLock(); err != nil {
		log.Error("Error releasing lock", "err", err)
		if closeErr == nil {
			closeErr = err
		}
	}

	return closeErr
}
