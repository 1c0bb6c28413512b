package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// sentenceBoundary matches a run of terminal punctuation followed by whitespace.
// Whitespace is anything unicode.IsSpace accepts, not only the ASCII set of \s.
// Abbreviations, decimals and quoted punctuation are split too; that is accepted.
var sentenceBoundary = regexp.MustCompile(`[.!?]+[\s\p{Z}\v\x{85}]+`)

// SplitSentences trims text and splits it after every run of '.', '!' or '?'
// that is followed by whitespace. Terminators stay with their sentence, the
// separating whitespace is dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	prev := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		end := loc[0]
		for end < loc[1] && strings.IndexByte(".!?", text[end]) >= 0 {
			end++
		}
		if s := strings.TrimSpace(text[prev:end]); s != "" {
			sentences = append(sentences, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// ChunkSentences packs sentences greedily into chunks of at most size runes,
// joined by single spaces. Trailing sentences worth at most overlap runes are
// carried into the next chunk. A sentence longer than size is cut with
// ChunkCharacters and its pieces are emitted as they are: unlike packed
// chunks they are not trimmed, so they may start or end with whitespace.
func ChunkSentences(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	var (
		chunks []string
		acc    accumulator
	)
	for _, s := range SplitSentences(text) {
		n := utf8.RuneCountInString(s)

		if n > size {
			if !acc.empty() {
				chunks = acc.flush(chunks, 0)
			}
			for _, piece := range ChunkCharacters(s, size, overlap) {
				if strings.TrimSpace(piece) != "" {
					chunks = append(chunks, piece)
				}
			}
			continue
		}

		if acc.lengthWith(n) <= size {
			acc.add(s)
			continue
		}

		chunks = acc.flush(chunks, overlap)
		acc.fit(n, size)
		acc.add(s)
	}

	if !acc.empty() {
		chunks = acc.flush(chunks, 0)
	}
	return chunks
}

// accumulator holds the sentences of the chunk being built. length is the
// rune count of the sentences joined by single spaces.
type accumulator struct {
	sentences []string
	length    int
}

func (a *accumulator) empty() bool {
	return len(a.sentences) == 0
}

// lengthWith returns the joined length after appending a sentence of n runes.
func (a *accumulator) lengthWith(n int) int {
	if a.empty() {
		return n
	}
	return a.length + 1 + n
}

func (a *accumulator) add(s string) {
	a.length = a.lengthWith(utf8.RuneCountInString(s))
	a.sentences = append(a.sentences, s)
}

func (a *accumulator) reset() {
	a.sentences = nil
	a.length = 0
}

// flush appends the joined sentences to chunks and keeps, as the seed of the
// next chunk, the longest run of trailing sentences whose joined length is
// within overlap.
func (a *accumulator) flush(chunks []string, overlap int) []string {
	if chunk := strings.TrimSpace(strings.Join(a.sentences, " ")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	if overlap <= 0 || a.empty() {
		a.reset()
		return chunks
	}

	start, total := len(a.sentences), 0
	for i := len(a.sentences) - 1; i >= 0; i-- {
		cost := utf8.RuneCountInString(a.sentences[i])
		if start < len(a.sentences) {
			cost++
		}
		if total+cost > overlap {
			break
		}
		total += cost
		start = i
	}

	a.sentences = append([]string(nil), a.sentences[start:]...)
	a.length = total
	return chunks
}

// fit drops the oldest carried sentences until a sentence of n runes can be
// appended without exceeding size.
func (a *accumulator) fit(n, size int) {
	for !a.empty() && a.length+1+n > size {
		a.length -= utf8.RuneCountInString(a.sentences[0])
		if len(a.sentences) > 1 {
			a.length--
		}
		a.sentences = a.sentences[1:]
	}
}
