package ai

import (
	"context"
	"errors"
	"strings"
)

// Runtime is implemented by chat backends: the OpenAI-compatible Client and
// the local OllamaClient.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by GetRuntime.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
)

// ErrEmptyResponse is returned by Complete when the backend answered with no
// usable text.
var ErrEmptyResponse = errors.New("empty response")

// Complete sends prompt as a single user message and returns the trimmed
// content of the first choice. A nil temperature leaves the backend default.
func Complete(ctx context.Context, rt Runtime, model string, temperature *float64, prompt string) (string, error) {
	resp, err := rt.Generate(ctx, GenerateRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
