package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/core/domain"
)

func TestNewClassifierBackendNoneDisablesContentTier(t *testing.T) {
	model, err := NewClassifierBackend(config.Config{ClassifierBackend: BackendNone})
	if err != nil {
		t.Fatalf("NewClassifierBackend() error = %v", err)
	}
	if model != nil {
		t.Fatalf("expected nil classifier for none backend, got %T", model)
	}
}

func TestNewClassifierBackendRejectsUnknownName(t *testing.T) {
	if _, err := NewClassifierBackend(config.Config{ClassifierBackend: "tarot"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewClassifierBackendBuildsKnownBackends(t *testing.T) {
	for _, backend := range []string{BackendHuggingFace, BackendOllama, BackendOpenAI, ""} {
		model, err := NewClassifierBackend(config.Config{ClassifierBackend: backend, ClassifierTimeoutSeconds: 1})
		if err != nil {
			t.Fatalf("NewClassifierBackend(%q) error = %v", backend, err)
		}
		if model == nil {
			t.Fatalf("expected classifier for backend %q", backend)
		}
	}
}

func TestNewUsesSpoolWithoutS3(t *testing.T) {
	cfg := config.Config{
		ClassifierBackend: BackendNone,
		WorkDir:           t.TempDir(),
		SpoolDir:          filepath.Join(t.TempDir(), "spool"),
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if app.Archives == nil || app.OrganizeUC == nil || app.HTTPMetrics == nil {
		t.Fatalf("expected fully wired app, got %+v", app)
	}
}

func TestNewOrganizerWithoutBackendRoutesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cv.pdf", "photo.png", "data.xyz"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	uc, err := NewOrganizer(config.Config{ClassifierBackend: BackendNone, WorkDir: t.TempDir()}, nil, nil)
	if err != nil {
		t.Fatalf("NewOrganizer() error = %v", err)
	}

	report, err := uc.OrganizeInPlace(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("OrganizeInPlace() error = %v", err)
	}

	want := map[domain.Category]int{
		domain.CategoryDocuments: 1,
		domain.CategoryImages:    1,
		domain.FallbackCategory:  1,
	}
	for category, count := range want {
		if report.Summary[category] != count {
			t.Fatalf("expected %d in %s, got summary %v", count, category, report.Summary)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "Documents", "cv.pdf")); err != nil {
		t.Fatalf("expected cv.pdf moved to Documents: %v", err)
	}
}

func countingInferenceServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestNewClassifierBackendAppliesRetryAttempts(t *testing.T) {
	server, hits := countingInferenceServer(t)

	model, err := NewClassifierBackend(config.Config{
		ClassifierBackend:          BackendHuggingFace,
		ClassifierTimeoutSeconds:   10,
		ClassifierRetryMaxAttempts: 3,
		ClassifierBreakerEnabled:   true,
		HFURL:                      server.URL,
		HFModel:                    "zero-shot",
	})
	if err != nil {
		t.Fatalf("NewClassifierBackend() error = %v", err)
	}

	if _, err := model.Classify(context.Background(), "invoice total", domain.AILabels()); err == nil {
		t.Fatalf("expected error from unavailable backend")
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestNewClassifierBackendDefaultsToSingleAttempt(t *testing.T) {
	server, hits := countingInferenceServer(t)

	model, err := NewClassifierBackend(config.Config{
		ClassifierBackend: BackendHuggingFace,
		HFURL:             server.URL,
		HFModel:           "zero-shot",
	})
	if err != nil {
		t.Fatalf("NewClassifierBackend() error = %v", err)
	}

	if _, err := model.Classify(context.Background(), "invoice total", domain.AILabels()); err == nil {
		t.Fatalf("expected error from unavailable backend")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}
