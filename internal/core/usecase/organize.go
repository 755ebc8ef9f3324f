package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

const skipReasonTooLarge = "too_large"

type OrganizeBatchUseCase struct {
	fs         ports.FileSystem
	workspaces ports.WorkspaceFactory
	router     *FileRouter
	archiver   ports.Archiver
	sink       ports.ArchiveSink
	observer   ports.OrganizeObserver
}

func NewOrganizeBatchUseCase(
	fs ports.FileSystem,
	workspaces ports.WorkspaceFactory,
	router *FileRouter,
	archiver ports.Archiver,
	sink ports.ArchiveSink,
	observer ports.OrganizeObserver,
) *OrganizeBatchUseCase {
	return &OrganizeBatchUseCase{
		fs:         fs,
		workspaces: workspaces,
		router:     router,
		archiver:   archiver,
		sink:       sink,
		observer:   observer,
	}
}

// Organize stages the uploads into a fresh workspace, routes them, archives
// the result and hands the archive to the sink. Oversized uploads are skipped
// and listed in the report. The workspace is removed before returning.
func (uc *OrganizeBatchUseCase) Organize(ctx context.Context, uploads []domain.Upload) (report *domain.BatchReport, err error) {
	start := time.Now()
	report = &domain.BatchReport{
		BatchID: uuid.NewString(),
		Summary: domain.Summary{},
	}
	defer func() {
		report.Duration = time.Since(start)
		uc.finish(report, err)
	}()

	ws, err := uc.workspaces.Create(report.BatchID)
	if err != nil {
		return report, fmt.Errorf("create workspace: %w", err)
	}
	defer func() {
		if cleanupErr := ws.Cleanup(); cleanupErr != nil {
			slog.Warn("workspace_cleanup_failed", "batch_id", report.BatchID, "error", cleanupErr)
		}
	}()

	accepted, err := uc.stage(ws, uploads, report)
	if err != nil {
		return report, err
	}
	if accepted == 0 {
		return report, domain.WrapError(
			domain.ErrInvalidInput,
			"organize batch",
			fmt.Errorf("no files accepted (%d skipped)", len(report.Skipped)),
		)
	}

	if err := uc.routeAndPreview(ctx, ws.Root(), report); err != nil {
		return report, err
	}

	archive, err := uc.archiver.Archive(ctx, ws.Root())
	if err != nil {
		return report, fmt.Errorf("archive workspace: %w", err)
	}
	published, err := uc.sink.Publish(ctx, report.BatchID, archive)
	if err != nil {
		return report, fmt.Errorf("publish archive: %w", err)
	}
	report.Archive = published
	return report, nil
}

// OrganizeInPlace routes an existing folder without staging. When withArchive
// is set the archive is left next to the folder.
func (uc *OrganizeBatchUseCase) OrganizeInPlace(ctx context.Context, dir string, withArchive bool) (report *domain.BatchReport, err error) {
	start := time.Now()
	report = &domain.BatchReport{
		BatchID: uuid.NewString(),
		Summary: domain.Summary{},
	}
	defer func() {
		report.Duration = time.Since(start)
		uc.finish(report, err)
	}()

	if err := uc.routeAndPreview(ctx, dir, report); err != nil {
		return report, err
	}
	if !withArchive {
		return report, nil
	}

	archive, err := uc.archiver.Archive(ctx, dir)
	if err != nil {
		return report, fmt.Errorf("archive folder: %w", err)
	}
	report.Archive = archive
	return report, nil
}

func (uc *OrganizeBatchUseCase) stage(ws ports.Workspace, uploads []domain.Upload, report *domain.BatchReport) (int, error) {
	accepted := 0
	for _, upload := range uploads {
		if upload.Size > domain.MaxFileSize {
			uc.skip(report, upload.Filename, upload.Size)
			continue
		}

		if _, err := ws.Stage(upload.Filename, upload.Body, domain.MaxFileSize); err != nil {
			if domain.IsKind(err, domain.ErrFileTooLarge) {
				uc.skip(report, upload.Filename, upload.Size)
				continue
			}
			return accepted, fmt.Errorf("stage %s: %w", upload.Filename, err)
		}
		accepted++
	}
	return accepted, nil
}

func (uc *OrganizeBatchUseCase) skip(report *domain.BatchReport, filename string, size int64) {
	reason := fmt.Sprintf(
		"%s is too large (%s, limit %s) and was skipped",
		filename,
		humanize.IBytes(uint64(max(size, 0))),
		humanize.IBytes(domain.MaxFileSize),
	)
	report.Skipped = append(report.Skipped, domain.SkippedFile{
		Filename: filename,
		Size:     size,
		Reason:   reason,
	})
	if uc.observer != nil {
		uc.observer.ObserveSkipped(skipReasonTooLarge)
	}
	slog.Warn("upload_skipped", "batch_id", report.BatchID, "file", filename, "size", size, "reason", skipReasonTooLarge)
}

func (uc *OrganizeBatchUseCase) routeAndPreview(ctx context.Context, dir string, report *domain.BatchReport) error {
	routing, err := uc.router.Route(ctx, dir)
	report.Summary = routing.Summary
	report.Placements = routing.Placements
	report.TotalFiles = routing.Summary.Total()
	if err != nil {
		return fmt.Errorf("route files: %w", err)
	}

	tree, err := uc.fs.Tree(dir)
	if err != nil {
		return fmt.Errorf("build folder preview: %w", err)
	}
	report.Tree = tree
	return nil
}

func (uc *OrganizeBatchUseCase) finish(report *domain.BatchReport, err error) {
	if uc.observer != nil {
		uc.observer.ObserveBatch(report.TotalFiles, report.Duration, err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("batch_failed", "batch_id", report.BatchID, "files", report.TotalFiles, "error", err)
		return
	}
	slog.Info("batch_organized",
		"batch_id", report.BatchID,
		"files", report.TotalFiles,
		"skipped", len(report.Skipped),
		"categories", len(report.Summary),
		"duration_ms", float64(report.Duration.Microseconds())/1000.0,
	)
}
