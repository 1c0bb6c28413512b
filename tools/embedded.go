package tools

import "embed"

// Embed static data files into the binary so the server validates input
// without any files next to it.
//
// Embedded files:
// - Chunk config JSON schema (validate_chunk_config)

//go:embed data/schema/*.json
var embeddedFS embed.FS

// chunkConfigSchemaFile is the embedded schema for chunking settings
const chunkConfigSchemaFile = "data/schema/chunk_config.json"

// embeddedDataProvider implements DataProvider using embed.FS.
// This is the production implementation that uses actual embedded files.
type embeddedDataProvider struct {
	fs embed.FS
}

// NewEmbeddedDataProvider creates a production DataProvider that uses embedded files.
func NewEmbeddedDataProvider() DataProvider {
	return &embeddedDataProvider{fs: embeddedFS}
}

// ReadFile reads the named file from the embedded filesystem.
func (p *embeddedDataProvider) ReadFile(name string) ([]byte, error) {
	return p.fs.ReadFile(name)
}

// Default provider used by package-level functions
var defaultDataProvider DataProvider = NewEmbeddedDataProvider()
