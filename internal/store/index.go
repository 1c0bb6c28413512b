package store

import "github.com/blevesearch/bleve/v2"

// Index is the read side of a chunk index: what searches and status checks
// need, and nothing that mutates it.
type Index interface {
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)
	DocCount() (uint64, error)
	Close() error
}

// bleveIndex narrows a bleve.Index to Index
type bleveIndex struct {
	bleve.Index
}

// Wrap exposes an open bleve index as an Index
func Wrap(index bleve.Index) Index {
	return bleveIndex{Index: index}
}
