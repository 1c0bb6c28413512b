package tools

import (
	"fmt"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"

	"github.com/ragindex/mcp-server/internal/store"
)

// mockIndex is an in-memory stand-in for store.Index
type mockIndex struct {
	id          int
	docCount    uint64
	searchError error
	closed      atomic.Bool
	searches    atomic.Int32
}

var _ store.Index = (*mockIndex)(nil)

func newMockIndex(id int) *mockIndex {
	return &mockIndex{id: id, docCount: 100}
}

func (m *mockIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	if m.closed.Load() {
		return nil, fmt.Errorf("index closed")
	}
	m.searches.Add(1)
	if m.searchError != nil {
		return nil, m.searchError
	}
	return &bleve.SearchResult{Request: req, Total: m.docCount}, nil
}

func (m *mockIndex) DocCount() (uint64, error) {
	if m.closed.Load() {
		return 0, fmt.Errorf("index closed")
	}
	return m.docCount, nil
}

func (m *mockIndex) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("already closed")
	}
	return nil
}
