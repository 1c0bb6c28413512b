// Package config loads ragindex settings: defaults, then a TOML file, then
// RAGINDEX_* environment variables (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ragindex/mcp-server/internal/chunking"
)

// EnvConfigPath names the variable that points at the config file
const EnvConfigPath = "RAGINDEX_CONFIG"

// DefaultConfigFile is read from the working directory when no path is given
const DefaultConfigFile = "ragindex.toml"

type Config struct {
	Chunking chunking.Config `toml:"chunking"`
	Index    IndexConfig     `toml:"index"`
	Search   SearchConfig    `toml:"search"`
	LLM      LLMConfig       `toml:"llm"`
	Log      LogConfig       `toml:"log"`
	Metrics  MetricsConfig   `toml:"metrics"`
}

type IndexConfig struct {
	DataDir   string `toml:"data_dir"`
	BatchSize int    `toml:"batch_size"`
}

type SearchConfig struct {
	TopK int `toml:"top_k"`
}

type LLMConfig struct {
	BaseURL string        `toml:"base_url"`
	Model   string        `toml:"model"`
	Timeout time.Duration `toml:"timeout"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type MetricsConfig struct {
	// Addr enables the Prometheus endpoint when set, e.g. "127.0.0.1:9464"
	Addr string `toml:"addr"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(".", "data")
	if home != "" {
		dataDir = filepath.Join(home, ".ragindex")
	}
	return Config{
		Chunking: chunking.DefaultConfig(),
		Index:    IndexConfig{DataDir: dataDir, BatchSize: 100},
		Search:   SearchConfig{TopK: 4},
		LLM:      LLMConfig{BaseURL: "http://localhost:11434", Model: "llama3.1:8b", Timeout: 2 * time.Minute},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
// An explicit path that does not exist is an error; the default file is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if method, err := chunking.ParseMethod(string(cfg.Chunking.Method)); err == nil {
		cfg.Chunking.Method = method
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RAGINDEX_DATA_DIR"); v != "" {
		cfg.Index.DataDir = v
	}
	if v := os.Getenv("RAGINDEX_CHUNK_METHOD"); v != "" {
		cfg.Chunking.Method = chunking.Method(v)
	}
	if v := os.Getenv("RAGINDEX_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RAGINDEX_CHUNK_SIZE %q: %w", v, err)
		}
		cfg.Chunking.Size = n
	}
	if v := os.Getenv("RAGINDEX_CHUNK_OVERLAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RAGINDEX_CHUNK_OVERLAP %q: %w", v, err)
		}
		cfg.Chunking.Overlap = n
	}
	if v := os.Getenv("RAGINDEX_OLLAMA_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("RAGINDEX_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("RAGINDEX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RAGINDEX_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return nil
}

// Validate fails fast on settings that would otherwise surface mid-run.
func (c Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if c.Index.DataDir == "" {
		return errors.New("index.data_dir must not be empty")
	}
	if c.Index.BatchSize < 1 {
		return fmt.Errorf("index.batch_size must be at least 1 (got %d)", c.Index.BatchSize)
	}
	if c.Search.TopK < 1 {
		return fmt.Errorf("search.top_k must be at least 1 (got %d)", c.Search.TopK)
	}
	return nil
}
