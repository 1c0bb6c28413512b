package chunking_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragindex/mcp-server/internal/chunking"
)

func TestChunkCharacters(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name:    "sliding window with overlap",
			text:    "abcdefghij",
			size:    4,
			overlap: 1,
			want:    []string{"abcd", "defg", "ghij"},
		},
		{
			name:    "empty text",
			text:    "",
			size:    10,
			overlap: 2,
			want:    nil,
		},
		{
			name:    "size larger than text",
			text:    "short",
			size:    100,
			overlap: 10,
			want:    []string{"short"},
		},
		{
			name:    "size equal to text",
			text:    "exact",
			size:    5,
			overlap: 0,
			want:    []string{"exact"},
		},
		{
			name:    "no overlap",
			text:    "abcdef",
			size:    3,
			overlap: 0,
			want:    []string{"abc", "def"},
		},
		{
			name:    "last window clipped",
			text:    "abcdefg",
			size:    3,
			overlap: 0,
			want:    []string{"abc", "def", "g"},
		},
		{
			name:    "overlap equal to size advances by one",
			text:    "abcde",
			size:    2,
			overlap: 2,
			want:    []string{"ab", "bc", "cd", "de"},
		},
		{
			name:    "overlap larger than size advances by one",
			text:    "abcde",
			size:    2,
			overlap: 5,
			want:    []string{"ab", "bc", "cd", "de"},
		},
		{
			name:    "multibyte runes are never split",
			text:    "héllo wörld",
			size:    4,
			overlap: 0,
			want:    []string{"héll", "o wö", "rld"},
		},
		{
			name:    "whitespace is kept",
			text:    "  ab  ",
			size:    3,
			overlap: 0,
			want:    []string{"  a", "b  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunking.ChunkCharacters(tt.text, tt.size, tt.overlap)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkCharacters_Properties(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 7) + "Ünïcödé tail."
	runes := []rune(text)

	for size := 1; size <= 60; size += 7 {
		for _, overlap := range []int{0, 1, 5, size - 1, size, size + 3} {
			if overlap < 0 {
				continue
			}
			chunks := chunking.ChunkCharacters(text, size, overlap)
			require.NotEmpty(t, chunks, "size=%d overlap=%d", size, overlap)

			step := max(1, size-overlap)
			for i, chunk := range chunks {
				n := utf8.RuneCountInString(chunk)
				assert.LessOrEqual(t, n, size, "chunk %d exceeds size=%d", i, size)
				assert.NotEmpty(t, chunk)

				start := i * step
				require.LessOrEqual(t, start+n, len(runes))
				assert.Equal(t, string(runes[start:start+n]), chunk, "chunk %d is not the window at %d", i, start)
			}

			// The last window ends exactly at the end of the text.
			last := chunks[len(chunks)-1]
			lastStart := (len(chunks) - 1) * step
			assert.Equal(t, len(runes), lastStart+utf8.RuneCountInString(last))
		}
	}
}

func TestChunkCharacters_SingleChunkWhenTextFits(t *testing.T) {
	text := "  raw text, not trimmed  "
	got := chunking.ChunkCharacters(text, utf8.RuneCountInString(text), 3)
	assert.Equal(t, []string{text}, got)
}
