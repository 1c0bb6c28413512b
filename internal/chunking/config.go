package chunking

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Method selects the splitting strategy.
type Method string

const (
	// MethodCharacter slides a fixed-size window over the text
	MethodCharacter Method = "char"

	// MethodSentence packs whole sentences into chunks
	MethodSentence Method = "sentence"
)

// Chunking defaults, matching the indexing UI the pipeline was built for
const (
	DefaultSize    = 500
	DefaultOverlap = 50
	DefaultMethod  = MethodCharacter
)

var (
	// ErrInvalidChunkSize is returned when the chunk size is below 1
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")

	// ErrNegativeOverlap is returned when the overlap is below 0
	ErrNegativeOverlap = errors.New("overlap must not be negative")

	// ErrUnknownMethod is returned for any method other than "char" or "sentence"
	ErrUnknownMethod = errors.New("unknown chunking method")
)

// Methods lists the supported methods in presentation order.
var Methods = []Method{MethodCharacter, MethodSentence}

// ParseMethod converts a configuration value to a Method.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Methods, m) {
		return m, nil
	}

	names := make([]string, len(Methods))
	for i, known := range Methods {
		names[i] = string(known)
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMethod, s, strings.Join(names, ", "))
}

// Config holds the size and overlap budgets plus the strategy.
type Config struct {
	Size    int    `json:"chunk_size" toml:"size"`
	Overlap int    `json:"overlap" toml:"overlap"`
	Method  Method `json:"method" toml:"method"`
}

// DefaultConfig returns the 500/50 character configuration.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, Overlap: DefaultOverlap, Method: DefaultMethod}
}

// Validate rejects configurations that must not reach a chunker.
// An overlap greater than or equal to the size is allowed.
func (c Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("invalid chunk config: %w (got %d)", ErrInvalidChunkSize, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("invalid chunk config: %w (got %d)", ErrNegativeOverlap, c.Overlap)
	}
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return fmt.Errorf("invalid chunk config: %w", err)
	}
	return nil
}

// String renders the configuration for logs.
func (c Config) String() string {
	return fmt.Sprintf("method=%s size=%d overlap=%d", c.Method, c.Size, c.Overlap)
}
