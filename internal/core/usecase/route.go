package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

// ContentClassifier decides a category from extracted text, or abstains.
type ContentClassifier interface {
	Classify(ctx context.Context, text string) (domain.Category, bool)
}

// FileRouter moves the direct children of a folder into category folders.
type FileRouter struct {
	fs         ports.FileSystem
	extractor  ports.TextExtractor
	classifier ContentClassifier
	observer   ports.OrganizeObserver
}

func NewFileRouter(
	fs ports.FileSystem,
	extractor ports.TextExtractor,
	classifier ContentClassifier,
	observer ports.OrganizeObserver,
) *FileRouter {
	return &FileRouter{
		fs:         fs,
		extractor:  extractor,
		classifier: classifier,
		observer:   observer,
	}
}

// Route applies content classification, then the extension table, then the
// fallback bucket to every regular file directly under folder. Subfolders are
// left untouched. A filesystem error aborts the run.
func (r *FileRouter) Route(ctx context.Context, folder string) (domain.RoutingResult, error) {
	result := domain.RoutingResult{Summary: domain.Summary{}}

	names, err := r.fs.ListFiles(folder)
	if err != nil {
		return result, fmt.Errorf("list source folder: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		category, tier := r.decide(ctx, filepath.Join(folder, name), name)

		target := filepath.Join(folder, string(category))
		if err := r.fs.EnsureDir(target); err != nil {
			return result, fmt.Errorf("create category folder %s: %w", category, err)
		}
		stored, err := r.fs.Move(filepath.Join(folder, name), target)
		if err != nil {
			return result, fmt.Errorf("move %s to %s: %w", name, category, err)
		}

		result.Summary.Add(category)
		result.Placements = append(result.Placements, domain.Placement{
			Filename: name,
			Stored:   stored,
			Category: category,
			Tier:     tier,
		})
		if r.observer != nil {
			r.observer.ObservePlacement(category, tier)
		}
		slog.Debug("file_routed", "file", name, "category", category, "tier", tier)
	}

	return result, nil
}

func (r *FileRouter) decide(ctx context.Context, path, name string) (domain.Category, domain.RoutingTier) {
	ext := domain.Extension(name)

	if domain.IsContentExtension(ext) && r.classifier != nil {
		extraction := r.extractor.Extract(ctx, path)
		if extraction.Outcome == domain.ExtractionFailed {
			slog.Debug("extraction_failed", "file", name)
		}
		if category, ok := r.classifier.Classify(ctx, extraction.Text); ok {
			return category, domain.TierContent
		}
	}

	if category, ok := domain.CategoryForExtension(ext); ok {
		return category, domain.TierExtension
	}
	return domain.FallbackCategory, domain.TierFallback
}
