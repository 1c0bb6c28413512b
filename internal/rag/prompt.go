// Package rag turns retrieved chunks into an answer: it builds the grounded
// prompt and sends it to an Ollama server.
package rag

import (
	"fmt"
	"strings"
)

// Passage is one retrieved chunk handed to the model as context
type Passage struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

const promptTemplate = `
You are a helpful assistant. Use ONLY the provided context to answer.
If insufficient, say so.

Context:
%s

Question:
%s

Answer:
`

// BuildPrompt numbers the passages as "[i] source:" blocks and wraps them in
// the grounded-answer instructions.
func BuildPrompt(question string, passages []Passage) string {
	blocks := make([]string, 0, len(passages))
	for i, p := range passages {
		blocks = append(blocks, fmt.Sprintf("[%d] %s:\n%s", i+1, p.Source, p.Content))
	}
	return fmt.Sprintf(promptTemplate, strings.Join(blocks, "\n\n"), question)
}

// BestPassage returns the highest-scoring passage, or false when there is none
func BestPassage(passages []Passage) (Passage, bool) {
	if len(passages) == 0 {
		return Passage{}, false
	}
	best := passages[0]
	for _, p := range passages[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}
