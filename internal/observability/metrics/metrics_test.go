package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

func TestMiddlewareRecordsNormalizedPath(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/archives/3b241101-e2bb-4255-8caf-4136c566a962", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodGet, "/v1/archives/{token}", "404"))
	if got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
}

func TestOrganizerMetricsShareRegistry(t *testing.T) {
	httpMetrics := NewHTTPServerMetrics("api")
	m := NewOrganizerMetrics("api", httpMetrics.Registry())

	m.ObservePlacement(domain.CategoryResume, domain.TierContent)
	m.ObservePlacement(domain.CategoryResume, domain.TierContent)
	m.ObserveAbstention("low_confidence")
	m.ObserveSkipped("too_large")
	m.ObserveBatch(2, 150*time.Millisecond, nil)
	m.ObserveBatch(0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.routedTotal.WithLabelValues("api", "Resume", "content")); got != 2 {
		t.Fatalf("expected 2 routed files, got %v", got)
	}
	if got := testutil.ToFloat64(m.abstentionsTotal.WithLabelValues("api", "low_confidence")); got != 1 {
		t.Fatalf("expected 1 abstention, got %v", got)
	}

	rec := httptest.NewRecorder()
	httpMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"organizer_files_routed_total", "organizer_files_skipped_total", "organizer_batch_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in exposition", name)
		}
	}
}
