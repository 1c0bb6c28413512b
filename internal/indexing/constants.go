package indexing

const (
	// CharsPerToken is the approximation for token estimation
	CharsPerToken = 4

	// MaxKeywords caps the keywords stored per chunk
	MaxKeywords = 10

	// DefaultBatchSize is the number of chunks submitted per index batch
	DefaultBatchSize = 100

	// IndexSchemaVersion increments when chunk records or the mapping change
	// v1: flat chunks with source metadata
	IndexSchemaVersion = 1
)
