package indexing

// Document is a loaded source file ready for chunking
type Document struct {
	Source string `json:"source"` // Base name of the originating file
	Text   string `json:"-"`
}

// Chunk represents one chunk of a document in the search index
type Chunk struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`                // Originating file name
	Position   int      `json:"position"`              // Order of the chunk within its source
	Method     string   `json:"method"`                // Chunking method that produced it
	Content    string   `json:"content"`
	Keywords   []string `json:"keywords,omitempty"`    // Key terms extracted from content
	TokenCount int      `json:"token_count,omitempty"` // Estimated token count for monitoring
}
