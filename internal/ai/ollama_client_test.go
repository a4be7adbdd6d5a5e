package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestOllamaClassifiesTool(t *testing.T) {
	var captured ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "  Histogram\n"},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	zero := 0.0
	got, err := Complete(ctx, c, "gemma:2b", &zero, `Available tools: summary, histogram. User Query: "spread of prices"`)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "Histogram" {
		t.Fatalf("expected trimmed tool answer, got %q", got)
	}
	if captured.Model != "gemma:2b" || captured.Stream {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" ||
		!strings.Contains(captured.Messages[0].Content, `User Query: "spread of prices"`) {
		t.Fatalf("expected the prompt as a single user message, got %+v", captured.Messages)
	}
	// An explicit zero temperature must reach the model.
	if temp, ok := captured.Options["temperature"]; !ok || temp != 0.0 {
		t.Fatalf("expected temperature 0 in options, got %v", captured.Options)
	}
}

func TestOllamaGenerateBadRequest(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "bad request"})
	}))
	defer srv.Close()
	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "gemma:2b", Messages: []Message{{Role: "user", Content: "hi"}}})
	var badReq *BadRequestError
	if !errors.As(err, &badReq) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestOllamaGenerateUnreachable(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "gemma:2b", Messages: []Message{{Role: "user", Content: "hi"}}})
	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
}

func TestOllamaRejectsEmptyRequest(t *testing.T) {
	c := NewOllamaClient("http://localhost:11434", 2*time.Second, 1, 0, 0)

	_, err := c.Generate(context.Background(), GenerateRequest{Model: "gemma:2b", Messages: []Message{}})
	if err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected 'messages cannot be empty' error, got: %v", err)
	}
	_, err = Complete(context.Background(), c, "", nil, "which tool?")
	if err == nil || err.Error() != "model cannot be empty" {
		t.Fatalf("expected 'model cannot be empty' error, got: %v", err)
	}
}

func TestOllamaColumnSuggestion(t *testing.T) {
	var captured ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "x=height, y=weight"},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	got, err := Complete(context.Background(), c, "gemma:2b", nil, "Columns: ['height', 'weight']\nQuery: \"weight against height\"")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "x=height, y=weight" {
		t.Fatalf("unexpected answer %q", got)
	}
	// Without a temperature the model's own default applies.
	if _, ok := captured.Options["temperature"]; ok {
		t.Fatalf("temperature should be omitted, got %v", captured.Options)
	}
}

func TestOllamaBlankAnswerIsEmptyResponse(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": " \n"},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	if _, err := Complete(context.Background(), c, "gemma:2b", nil, "which tool?"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
