package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
	"github.com/kirillkom/file-organizer/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/file-organizer/internal/observability/metrics"
)

const (
	serviceName = "api"

	uploadField        = "files"
	multipartMemory    = 32 << 20
	backpressureWait   = 2 * time.Second
	reportFormatXLSX   = "xlsx"
	reportDownloadName = "organize-report.xlsx"
)

type Router struct {
	cfg       config.Config
	organizer ports.BatchOrganizer
	archives  ports.ArchiveFetcher
	metrics   *metrics.HTTPServerMetrics
	openAPI   []byte
}

func NewRouter(
	cfg config.Config,
	organizer ports.BatchOrganizer,
	archives ports.ArchiveFetcher,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	openAPI, _, err := loadOpenAPIDocument(context.Background())
	if err != nil {
		slog.Error("openapi_load_failed", "error", err)
	}
	return &Router{
		cfg:       cfg,
		organizer: organizer,
		archives:  archives,
		metrics:   httpMetrics,
		openAPI:   openAPI,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /{$}", rt.index)
	mux.Handle("POST /organize", rt.gated(http.HandlerFunc(rt.organizePage)))
	mux.Handle("POST /v1/organize", rt.gated(http.HandlerFunc(rt.organizeAPI)))
	mux.HandleFunc("GET /v1/archives/{token}", rt.downloadArchive)
	mux.HandleFunc("GET /v1/categories", rt.categories)
	mux.HandleFunc("GET /openapi.json", rt.openAPIDocument)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

// gated applies the in-flight limit to the expensive organize endpoints.
func (rt *Router) gated(next http.Handler) http.Handler {
	return backpressureWithReject(next, rt.cfg.APIMaxInflight, backpressureWait, rt.recordRejected)
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) index(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, http.StatusOK, newPageData(nil, ""))
}

func (rt *Router) organizePage(w http.ResponseWriter, r *http.Request) {
	report, err := rt.organizeRequest(w, r)
	if err != nil {
		renderPage(w, mapErrorToHTTPStatus(err), newPageData(report, userMessage(err)))
		return
	}
	renderPage(w, http.StatusOK, newPageData(report, ""))
}

func (rt *Router) organizeAPI(w http.ResponseWriter, r *http.Request) {
	report, err := rt.organizeRequest(w, r)
	if err != nil {
		payload := map[string]any{"error": userMessage(err)}
		if report != nil {
			payload["report"] = report
		}
		writeJSON(w, mapErrorToHTTPStatus(err), payload)
		return
	}

	if r.URL.Query().Get("report") == reportFormatXLSX {
		w.Header().Set("Content-Type", xlsx.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportDownloadName))
		if err := xlsx.Write(w, report); err != nil {
			slog.Error("report_write_failed", "batch_id", report.BatchID, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// organizeRequest reads the multipart upload and runs one batch. Parts are
// spooled by the multipart reader and removed when the batch finishes.
func (rt *Router) organizeRequest(w http.ResponseWriter, r *http.Request) (*domain.BatchReport, error) {
	if rt.cfg.APIMaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.APIMaxRequestBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("request larger than %d bytes: %w", maxBytesErr.Limit, err)
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse upload", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("multipart_cleanup_failed", "error", err)
		}
	}()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse upload", fmt.Errorf("multipart field '%s' is required", uploadField))
	}

	uploads, closeAll, err := rt.openUploads(headers)
	defer closeAll()
	if err != nil {
		return nil, err
	}
	return rt.organizer.Organize(r.Context(), uploads)
}

func (rt *Router) openUploads(headers []*multipart.FileHeader) ([]domain.Upload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, header := range headers {
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, header.Size)
		}
		f, err := header.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open uploaded %s: %w", header.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, domain.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Body:     f,
		})
	}
	return uploads, closeAll, nil
}

func (rt *Router) downloadArchive(w http.ResponseWriter, r *http.Request) {
	if rt.archives == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "archives are not served by this instance"})
		return
	}

	archive, release, err := rt.archives.Fetch(r.Context(), r.PathValue("token"))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": userMessage(err)})
		return
	}
	defer release()

	f, err := os.Open(archive.Path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive is unavailable"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(archive.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		slog.Warn("archive_download_interrupted", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func (rt *Router) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ai_labels":            domain.AILabels(),
		"extension_groups":     domain.ExtensionGroups,
		"fallback":             domain.FallbackCategory,
		"confidence_threshold": domain.ConfidenceThreshold,
		"max_classify_chars":   domain.MaxClassifyChars,
		"max_file_size":        domain.MaxFileSize,
	})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	if len(rt.openAPI) == 0 {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "api description unavailable"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.openAPI)
}

// userMessage hides internal detail for unexpected failures.
func userMessage(err error) string {
	if mapErrorToHTTPStatus(err) == http.StatusInternalServerError {
		return "failed to organize files: " + err.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
