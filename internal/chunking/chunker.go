// Package chunking splits raw document text into ordered, overlapping chunks
// for embedding and retrieval. Two strategies are available: fixed-width
// character windows and sentence-aware packing. Both are pure functions and
// safe to call concurrently on independent documents.
package chunking

import "fmt"

// Chunker splits text into chunks with a fixed, already validated configuration.
type Chunker interface {
	Chunk(text string) []string
}

// CharacterChunker applies ChunkCharacters.
type CharacterChunker struct {
	Size    int
	Overlap int
}

// Chunk implements Chunker.
func (c CharacterChunker) Chunk(text string) []string {
	return ChunkCharacters(text, c.Size, c.Overlap)
}

// SentenceChunker applies ChunkSentences.
type SentenceChunker struct {
	Size    int
	Overlap int
}

// Chunk implements Chunker.
func (c SentenceChunker) Chunk(text string) []string {
	return ChunkSentences(text, c.Size, c.Overlap)
}

// New validates cfg and returns the chunker for its method.
func New(cfg Config) (Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, _ := ParseMethod(string(cfg.Method))
	if method == MethodSentence {
		return SentenceChunker{Size: cfg.Size, Overlap: cfg.Overlap}, nil
	}
	return CharacterChunker{Size: cfg.Size, Overlap: cfg.Overlap}, nil
}

// ChunkText is the single entry point used by the indexing pipeline. The
// configuration is validated before any text is touched, so an unknown method
// fails without doing work.
func ChunkText(text string, size, overlap int, method string) ([]string, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}
	chunker, err := New(Config{Size: size, Overlap: overlap, Method: m})
	if err != nil {
		return nil, err
	}
	return chunker.Chunk(text), nil
}
