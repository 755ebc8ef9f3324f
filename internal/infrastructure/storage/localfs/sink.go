package localfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// FileSink moves a finished archive to a fixed destination path.
type FileSink struct {
	Path string
}

func (s FileSink) Publish(_ context.Context, _ string, archive *domain.ArchiveRef) (*domain.ArchiveRef, error) {
	dst, err := filepath.Abs(s.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve archive destination: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create archive destination dir: %w", err)
	}

	// Rename replaces dst; the copy fallback needs it gone first.
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("replace archive destination: %w", err)
	}
	if err := MoveFile(archive.Path, dst); err != nil {
		return nil, fmt.Errorf("move archive: %w", err)
	}

	return &domain.ArchiveRef{
		Name: filepath.Base(dst),
		Path: dst,
		Size: archive.Size,
	}, nil
}
