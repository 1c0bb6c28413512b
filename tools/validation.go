package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ragindex/mcp-server/internal/chunking"
)

const chunkConfigSchemaURL = "https://ragindex.dev/schema/chunk_config.json"

// ValidationResult represents the result of validating a chunk configuration
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Method   string              `json:"method"` // "schema", "json_syntax", "file_read"
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
	Summary  string              `json:"summary"`
	Config   *chunking.Config    `json:"config,omitempty"` // Effective settings once defaults are applied
}

// ValidationError represents a validation error
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Level   string `json:"level"` // "warning", "info"
}

// ValidateChunkConfigInput defines input for validate_chunk_config tool
type ValidateChunkConfigInput struct {
	Config string `json:"config" jsonschema:"Chunk configuration as JSON string or file path, e.g. {\"chunk_size\":500,\"overlap\":50,\"method\":\"char\"}"`
}

// ValidateChunkConfigOutput defines output for validate_chunk_config tool
type ValidateChunkConfigOutput struct {
	ValidationResult
}

var (
	schemaMu          sync.Mutex
	chunkConfigSchema *jsonschema.Schema
)

// isFilePath determines if a string is a file path rather than JSON content
func isFilePath(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return false
	}
	if strings.Contains(trimmed, "\n") {
		return false
	}

	return strings.HasPrefix(trimmed, "/") ||
		strings.HasPrefix(trimmed, "./") ||
		strings.HasPrefix(trimmed, "../") ||
		strings.HasSuffix(trimmed, ".json")
}

// loadChunkConfigSchema compiles the embedded schema once
func loadChunkConfigSchema() (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if chunkConfigSchema != nil {
		return chunkConfigSchema, nil
	}

	schemaContent, err := defaultDataProvider.ReadFile(chunkConfigSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk config schema: %w", err)
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaContent, &schemaDoc); err != nil {
		return nil, fmt.Errorf("chunk config schema is invalid JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(chunkConfigSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add chunk config schema: %w", err)
	}
	schema, err := compiler.Compile(chunkConfigSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chunk config schema: %w", err)
	}

	chunkConfigSchema = schema
	return schema, nil
}

func resetSchemaCache() {
	schemaMu.Lock()
	chunkConfigSchema = nil
	schemaMu.Unlock()
}

// validateChunkConfig checks configJSON against the schema, then against the
// chunker's own rules with omitted fields taken from the configured defaults.
func validateChunkConfig(configJSON string) (*ValidationResult, error) {
	result := &ValidationResult{
		Method:   "json_syntax",
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(configJSON), &doc); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Message: err.Error(),
			Code:    "JSON_SYNTAX_ERROR",
		})
		result.Summary = "Configuration is not valid JSON"
		return result, nil
	}

	schema, err := loadChunkConfigSchema()
	if err != nil {
		return nil, err
	}

	result.Method = "schema"
	if err := schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			result.Errors = parseSchemaValidationErrors(validationErr)
		} else {
			result.Errors = append(result.Errors, ValidationError{
				Message: err.Error(),
				Code:    "SCHEMA_VALIDATION_ERROR",
			})
		}
		result.Summary = fmt.Sprintf("Configuration validation failed with %d error(s)", len(result.Errors))
		return result, nil
	}

	// Integral floats like 1.0 and out-of-range integers pass the schema but
	// do not fit an int
	cfg := settings.Chunking
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Path:    decodeErrorPath(err),
			Message: err.Error(),
			Code:    "INVALID_CONFIG",
		})
		result.Summary = "Configuration validation failed with 1 error(s)"
		return result, nil
	}
	if method, err := chunking.ParseMethod(string(cfg.Method)); err == nil {
		cfg.Method = method
	}

	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "$",
			Message: err.Error(),
			Code:    configErrorCode(err),
		})
		result.Summary = "Configuration validation failed with 1 error(s)"
		return result, nil
	}

	if cfg.Overlap >= cfg.Size {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Path:    "$.overlap",
			Message: fmt.Sprintf("overlap %d is not smaller than chunk_size %d: character windows advance one character at a time", cfg.Overlap, cfg.Size),
			Level:   "warning",
		})
	}

	result.Valid = true
	result.Config = &cfg
	result.Summary = fmt.Sprintf("Configuration is valid (%s)", cfg)
	return result, nil
}

// decodeErrorPath points at the offending field of a JSON decode error
func decodeErrorPath(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "$." + typeErr.Field
	}
	return "$"
}

// parseSchemaValidationErrors converts jsonschema validation errors to our
// format, keeping only the leaf causes
func parseSchemaValidationErrors(validationErr *jsonschema.ValidationError) []ValidationError {
	if len(validationErr.Causes) == 0 {
		path := "$"
		if len(validationErr.InstanceLocation) > 0 {
			path = "$." + strings.Join(validationErr.InstanceLocation, ".")
		}
		return []ValidationError{{
			Path:    path,
			Message: validationErr.Error(),
			Code:    "SCHEMA_VALIDATION_ERROR",
		}}
	}

	var leaves []ValidationError
	for _, cause := range validationErr.Causes {
		leaves = append(leaves, parseSchemaValidationErrors(cause)...)
	}
	return leaves
}

// ValidateChunkConfig validates chunking settings before they are used
func ValidateChunkConfig(ctx context.Context, req *mcp.CallToolRequest, input ValidateChunkConfigInput) (*mcp.CallToolResult, ValidateChunkConfigOutput, error) {
	configContent := input.Config
	if isFilePath(input.Config) {
		fileContent, err := os.ReadFile(strings.TrimSpace(input.Config))
		if err != nil {
			return nil, ValidateChunkConfigOutput{ValidationResult{
				Method:   "file_read",
				Errors:   []ValidationError{{Message: err.Error(), Code: "FILE_READ_ERROR"}},
				Warnings: []ValidationWarning{},
				Summary:  fmt.Sprintf("Could not read configuration file %s", input.Config),
			}}, nil
		}
		configContent = string(fileContent)
	}

	result, err := validateChunkConfig(configContent)
	if err != nil {
		return nil, ValidateChunkConfigOutput{}, fmt.Errorf("validation failed: %w", err)
	}
	return nil, ValidateChunkConfigOutput{*result}, nil
}

// RegisterValidationTools registers the chunk config validation tool
func RegisterValidationTools(server *mcp.Server) error {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_chunk_config",
			Description: "Validate chunking settings (chunk_size, overlap, method) against the JSON schema and the chunker's rules. Omitted fields take the server defaults; the effective configuration is returned when valid.",
		},
		ValidateChunkConfig,
	)

	return nil
}
