package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/core/ports"
	"github.com/kirillkom/file-organizer/internal/core/usecase"
	"github.com/kirillkom/file-organizer/internal/infrastructure/archive/zipfs"
	"github.com/kirillkom/file-organizer/internal/infrastructure/extractor"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm/huggingface"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/s3archive"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/spool"
	"github.com/kirillkom/file-organizer/internal/observability/metrics"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOllama      = "ollama"
	BackendOpenAI      = "openai"
	BackendNone        = "none"
)

type App struct {
	Config config.Config

	HTTPMetrics *metrics.HTTPServerMetrics
	OrganizeUC  *usecase.OrganizeBatchUseCase
	// Archives is nil when archives are published to S3 and served from there.
	Archives ports.ArchiveFetcher
}

// New wires the API service. Archives go to S3 when S3_ENDPOINT is set and to
// the local download spool otherwise.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	httpMetrics := metrics.NewHTTPServerMetrics("api")
	observer := metrics.NewOrganizerMetrics("api", httpMetrics.Registry())

	var (
		sink     ports.ArchiveSink
		archives ports.ArchiveFetcher
	)
	if cfg.S3Endpoint != "" {
		s3Sink, err := s3archive.New(s3archive.Config{
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			UseSSL:     cfg.S3UseSSL,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("init archive bucket: %w", err)
		}
		if err := s3Sink.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure archive bucket: %w", err)
		}
		sink = s3Sink
	} else {
		archiveSpool, err := spool.New(cfg.SpoolDir, cfg.ArchiveTTL)
		if err != nil {
			return nil, fmt.Errorf("init archive spool: %w", err)
		}
		sink = archiveSpool
		archives = archiveSpool
	}

	organizeUC, err := NewOrganizer(cfg, sink, observer)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		HTTPMetrics: httpMetrics,
		OrganizeUC:  organizeUC,
		Archives:    archives,
	}, nil
}

// NewOrganizer builds the organize pipeline around the configured classifier
// backend. sink and observer may be nil; a nil sink limits the result to
// OrganizeInPlace.
func NewOrganizer(cfg config.Config, sink ports.ArchiveSink, observer ports.OrganizeObserver) (*usecase.OrganizeBatchUseCase, error) {
	fs := localfs.New()
	workspaces, err := localfs.NewWorkspaces(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("init workspaces: %w", err)
	}

	model, err := NewClassifierBackend(cfg)
	if err != nil {
		return nil, err
	}

	var content usecase.ContentClassifier
	if model != nil {
		content = usecase.NewCategoryClassifier(model, observer)
	}

	router := usecase.NewFileRouter(fs, extractor.New(), content, observer)
	return usecase.NewOrganizeBatchUseCase(fs, workspaces, router, zipfs.New(), sink, observer), nil
}

// NewClassifierBackend returns the guarded zero-shot backend named by
// CLASSIFIER_BACKEND, or nil for "none". The backend client is built on first
// use.
func NewClassifierBackend(cfg config.Config) (ports.ZeroShotClassifier, error) {
	var build func() (ports.ZeroShotClassifier, error)
	switch cfg.ClassifierBackend {
	case BackendNone:
		return nil, nil
	case BackendHuggingFace, "":
		build = func() (ports.ZeroShotClassifier, error) {
			return huggingface.New(cfg.HFURL, cfg.HFModel, cfg.HFToken), nil
		}
	case BackendOllama:
		build = func() (ports.ZeroShotClassifier, error) {
			return ollama.NewClassifier(ollama.New(cfg.OllamaURL, cfg.OllamaModel)), nil
		}
	case BackendOpenAI:
		build = func() (ports.ZeroShotClassifier, error) {
			if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for the openai backend")
			}
			return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
		}
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.ClassifierBackend)
	}

	backend := cfg.ClassifierBackend
	if backend == "" {
		backend = BackendHuggingFace
	}

	policy := resilience.DefaultConfig()
	policy.RetryMaxAttempts = cfg.ClassifierRetryMaxAttempts
	policy.BreakerEnabled = cfg.ClassifierBreakerEnabled

	return llm.NewGuarded(
		llm.NewLazy(build),
		resilience.NewExecutor(policy),
		time.Duration(cfg.ClassifierTimeoutSeconds)*time.Second,
		backend,
	), nil
}
