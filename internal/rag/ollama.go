package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoModel is returned when neither the client nor the call names a model
var ErrNoModel = errors.New("no model configured")

// Client calls the Ollama generate API
type Client struct {
	http  *resty.Client
	model string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a client for the Ollama server at baseURL using model by default
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return resp.StatusCode() >= http.StatusInternalServerError
	})

	return &Client{http: client, model: model}
}

// Generate sends prompt to the model and returns the trimmed completion.
// An empty model uses the client's default.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = c.model
	}
	if model == "" {
		return "", ErrNoModel
	}

	var out generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: model, Prompt: prompt, Stream: false}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode())
	}

	return strings.TrimSpace(out.Response), nil
}

// Answer builds the grounded prompt for question and generates a reply
func (c *Client) Answer(ctx context.Context, model, question string, passages []Passage) (string, error) {
	return c.Generate(ctx, model, BuildPrompt(question, passages))
}
