package indexing

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// chunkNamespace scopes chunk IDs so they never collide with other UUIDv5 users
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ragindex.dev/chunk"))

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "as": true, "by": true, "is": true,
	"it": true, "be": true, "with": true, "from": true, "that": true,
	"this": true, "are": true, "was": true, "txt": true,
}

// EstimateTokens estimates the token count for a text string
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / CharsPerToken
}

// ChunkID derives a stable identifier from the source and position, so
// re-indexing the same corpus replaces documents instead of duplicating them.
func ChunkID(source string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(source+"#"+strconv.Itoa(position))).String()
}

// ExtractKeywords extracts key terms from title and content
func ExtractKeywords(title, content string) []string {
	// Significant words from the title and the first 200 characters of content
	words := strings.FieldsFunc(strings.ToLower(title), isWordSeparator)

	contentPreview := content
	if runes := []rune(content); len(runes) > 200 {
		contentPreview = string(runes[:200])
	}
	words = append(words, strings.Fields(strings.ToLower(contentPreview))...)

	seen := make(map[string]bool)
	keywords := make([]string, 0, MaxKeywords)
	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) <= 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// EnrichMetadata adds ID, keywords and token count to a chunk
func EnrichMetadata(chunk *Chunk) {
	chunk.ID = ChunkID(chunk.Source, chunk.Position)

	title := strings.TrimSuffix(chunk.Source, filepath.Ext(chunk.Source))
	chunk.Keywords = ExtractKeywords(title, chunk.Content)

	chunk.TokenCount = EstimateTokens(chunk.Content)
}
