package chunking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/chunking"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    chunking.Method
		wantErr bool
	}{
		{input: "char", want: chunking.MethodCharacter},
		{input: "CHAR", want: chunking.MethodCharacter},
		{input: "sentence", want: chunking.MethodSentence},
		{input: "  sentence\n", want: chunking.MethodSentence},
		{input: "paragraph", wantErr: true},
		{input: "character", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := chunking.ParseMethod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, chunking.ErrUnknownMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethod_ErrorListsMethods(t *testing.T) {
	_, err := chunking.ParseMethod("paragraph")
	require.Error(t, err)
	assert.EqualError(t, err, `unknown chunking method: "paragraph" (want one of char, sentence)`)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, chunking.DefaultConfig().Validate())
	assert.NoError(t, chunking.Config{Size: 1, Overlap: 0, Method: "char"}.Validate())
	assert.NoError(t, chunking.Config{Size: 10, Overlap: 50, Method: "sentence"}.Validate(), "overlap above size is allowed")

	err := chunking.Config{Size: 0, Method: "char"}.Validate()
	assert.ErrorIs(t, err, chunking.ErrInvalidChunkSize)

	err = chunking.Config{Size: 10, Overlap: -1, Method: "char"}.Validate()
	assert.ErrorIs(t, err, chunking.ErrNegativeOverlap)

	err = chunking.Config{Size: 10, Method: "words"}.Validate()
	assert.ErrorIs(t, err, chunking.ErrUnknownMethod)
	assert.Contains(t, err.Error(), `"words"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := chunking.DefaultConfig()
	assert.Equal(t, 500, cfg.Size)
	assert.Equal(t, 50, cfg.Overlap)
	assert.Equal(t, chunking.MethodCharacter, cfg.Method)
	assert.Equal(t, "method=char size=500 overlap=50", cfg.String())
}
