package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragindex/mcp-server/internal/rag"
	"github.com/ragindex/mcp-server/internal/store"
)

// noContextAnswer is returned without calling the model when nothing matched
const noContextAnswer = "No indexed passage matches the question, so there is no context to answer from."

// AnswerQuestionInput defines input for answer_question tool
type AnswerQuestionInput struct {
	Question string `json:"question" jsonschema:"Question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"Number of chunks handed to the model as context (optional)"`
	Source   string `json:"source,omitempty" jsonschema:"Only use chunks from this source file (optional)"`
	Model    string `json:"model,omitempty" jsonschema:"Ollama model to use (optional, defaults to the server setting)"`
}

// AnswerQuestionOutput defines output for answer_question tool
type AnswerQuestionOutput struct {
	Answer     string        `json:"answer"`
	Sources    []rag.Passage `json:"sources"`
	BestSource string        `json:"best_source,omitempty"`
	BestScore  float64       `json:"best_score,omitempty"`
}

// AnswerQuestion retrieves the most relevant chunks and asks the model to
// answer from them only
func AnswerQuestion(ctx context.Context, req *mcp.CallToolRequest, input AnswerQuestionInput) (*mcp.CallToolResult, AnswerQuestionOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AnswerQuestionOutput{}, errors.New("question must not be empty")
	}

	results, _, err := searchIndex(ctx, store.Request{
		Query:  input.Question,
		Size:   input.TopK,
		Source: input.Source,
	})
	if err != nil {
		return nil, AnswerQuestionOutput{}, err
	}

	passages := make([]rag.Passage, 0, len(results))
	for _, r := range results {
		passages = append(passages, rag.Passage{
			Source:  r.Chunk.Source,
			Content: r.Chunk.Content,
			Score:   r.Score,
		})
	}

	output := AnswerQuestionOutput{Sources: passages}
	best, ok := rag.BestPassage(passages)
	if !ok {
		output.Answer = noContextAnswer
		return nil, output, nil
	}
	output.BestSource = best.Source
	output.BestScore = best.Score

	log.Debug("Answering question", "passages", len(passages), "best_source", best.Source)
	answer, err := answerClient().Answer(ctx, input.Model, input.Question, passages)
	if err != nil {
		return nil, AnswerQuestionOutput{}, fmt.Errorf("answer generation failed: %w", err)
	}
	output.Answer = answer

	return nil, output, nil
}

// RegisterAnswerTools registers the question answering tool
func RegisterAnswerTools(server *mcp.Server) error {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "answer_question",
			Description: "Answer a question using only the indexed documents: retrieves the top chunks, sends them to the configured Ollama model and returns the answer with its sources.",
		},
		AnswerQuestion,
	)

	return nil
}
