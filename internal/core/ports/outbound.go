package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// TextExtractor produces plain text for a file on disk. It never fails;
// problems are reported through Extraction.Outcome.
type TextExtractor interface {
	Extract(ctx context.Context, path string) domain.Extraction
}

// ZeroShotClassifier ranks candidate labels for text by descending score.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error)
}

// FileSystem is the set of operations the router performs on a folder.
type FileSystem interface {
	ListFiles(dir string) ([]string, error)
	EnsureDir(path string) error
	Move(src, dstDir string) (string, error)
	Tree(root string) ([]domain.TreeFolder, error)
}

// Workspace is a per-batch scratch folder. Cleanup removes the folder and
// any archive written next to it.
type Workspace interface {
	Root() string
	Stage(name string, body io.Reader, limit int64) (string, error)
	Cleanup() error
}

type WorkspaceFactory interface {
	Create(batchID string) (Workspace, error)
}

// Archiver packs a folder tree into a single compressed file next to it.
type Archiver interface {
	Archive(ctx context.Context, folder string) (*domain.ArchiveRef, error)
}

// ArchiveSink takes ownership of a finished archive and makes it downloadable.
type ArchiveSink interface {
	Publish(ctx context.Context, batchID string, archive *domain.ArchiveRef) (*domain.ArchiveRef, error)
}

// OrganizeObserver receives routing and batch events, usually for metrics.
type OrganizeObserver interface {
	ObservePlacement(category domain.Category, tier domain.RoutingTier)
	ObserveAbstention(reason string)
	ObserveSkipped(reason string)
	ObserveBatch(files int, duration time.Duration, err error)
}
