package tools

// DataProvider reads the static data files the tools depend on.
// Production reads from the embedded filesystem; tests can pass any
// in-memory implementation (fstest.MapFS satisfies it).
type DataProvider interface {
	// ReadFile reads the named file and returns its contents.
	// The name is relative to the data root (e.g., "data/schema/chunk_config.json").
	ReadFile(name string) ([]byte, error)
}

// SetDefaultDataProvider replaces the provider used by the tools
func SetDefaultDataProvider(provider DataProvider) {
	defaultDataProvider = provider
	resetSchemaCache()
}

// ResetDefaultDataProvider restores the embedded data provider
func ResetDefaultDataProvider() {
	SetDefaultDataProvider(NewEmbeddedDataProvider())
}
