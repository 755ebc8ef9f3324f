// Package spool keeps finished archives on local disk until they are
// downloaded once or expire.
package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/localfs"
)

const (
	readyExt   = ".zip"
	servingExt = ".serving"

	DownloadPathPrefix = "/v1/archives/"
)

type Spool struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
}

func New(dir string, ttl time.Duration) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Publish moves the archive into the spool under a fresh token and returns a
// reference whose URL downloads it.
func (s *Spool) Publish(_ context.Context, batchID string, archive *domain.ArchiveRef) (*domain.ArchiveRef, error) {
	s.sweep()

	token := uuid.NewString()
	dst := filepath.Join(s.dir, token+readyExt)
	if err := localfs.MoveFile(archive.Path, dst); err != nil {
		return nil, fmt.Errorf("spool archive: %w", err)
	}
	// Expiry is measured from publication, not from when the archive was built.
	now := s.now()
	_ = os.Chtimes(dst, now, now)

	slog.Debug("archive_spooled", "batch_id", batchID, "token", token, "size", archive.Size)
	return &domain.ArchiveRef{
		Name: domain.ArchiveDownloadName,
		Path: dst,
		Size: archive.Size,
		URL:  DownloadPathPrefix + token,
	}, nil
}

// Fetch claims the archive for token. It can be claimed only once; release
// deletes it after the caller has streamed it.
func (s *Spool) Fetch(_ context.Context, token string) (*domain.ArchiveRef, func(), error) {
	s.sweep()

	if _, err := uuid.Parse(token); err != nil {
		return nil, nil, domain.WrapError(domain.ErrArchiveNotFound, "fetch archive", fmt.Errorf("malformed token"))
	}

	ready := filepath.Join(s.dir, token+readyExt)
	claimed := ready + servingExt

	s.mu.Lock()
	err := os.Rename(ready, claimed)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, domain.WrapError(domain.ErrArchiveNotFound, "fetch archive", fmt.Errorf("token %s", token))
		}
		return nil, nil, fmt.Errorf("claim archive: %w", err)
	}

	info, err := os.Stat(claimed)
	if err != nil {
		_ = os.Remove(claimed)
		return nil, nil, fmt.Errorf("stat archive: %w", err)
	}

	release := func() {
		if err := os.Remove(claimed); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("archive_release_failed", "token", token, "error", err)
		}
	}
	return &domain.ArchiveRef{
		Name: domain.ArchiveDownloadName,
		Path: claimed,
		Size: info.Size(),
	}, release, nil
}

// sweep deletes spooled archives older than the TTL, including claimed ones
// whose download never finished.
func (s *Spool) sweep() {
	if s.ttl <= 0 {
		return
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("spool_sweep_failed", "error", err)
		return
	}

	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !(strings.HasSuffix(name, readyExt) || strings.HasSuffix(name, servingExt)) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err == nil {
			slog.Debug("archive_expired", "file", name)
		}
	}
}
