package ports

import (
	"context"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// BatchOrganizer is the inbound contract for upload-organize-archive runs.
type BatchOrganizer interface {
	Organize(ctx context.Context, uploads []domain.Upload) (*domain.BatchReport, error)
}

// ArchiveFetcher is the inbound read side of published archives.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, token string) (*domain.ArchiveRef, func(), error)
}
