package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

func TestClassifierSendsJSONPromptAndRanksScores(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"{\"Resume\": 0.6, \"Bill\": 0.2, \"Notes\": 0.2}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL+"/", "llama3"))
	scores, err := classifier.Classify(context.Background(), "curriculum vitae", []string{"Resume", "Bill", "Notes"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if payload["format"] != "json" || payload["model"] != "llama3" {
		t.Fatalf("unexpected request payload: %v", payload)
	}
	prompt, _ := payload["prompt"].(string)
	if !strings.Contains(prompt, "curriculum vitae") || !strings.Contains(prompt, "Resume, Bill, Notes") {
		t.Fatalf("unexpected prompt: %s", prompt)
	}

	if len(scores) != 3 || scores[0].Label != "Resume" {
		t.Fatalf("unexpected ranking: %+v", scores)
	}
	if scores[0].Score < 0.59 || scores[0].Score > 0.61 {
		t.Fatalf("expected normalized top score 0.6, got %f", scores[0].Score)
	}
}

func TestClassifierReturnsStatusErrorWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "llama3"))
	_, err := classifier.Classify(context.Background(), "hello", []string{"Notes"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *resilience.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected HTTPStatusError 502, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClassifierRejectsReplyWithoutScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"category\": \"unknown\"}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "llama3"))
	if _, err := classifier.Classify(context.Background(), "hello", []string{"Notes"}); err == nil {
		t.Fatalf("expected error for reply without label scores")
	}
}
