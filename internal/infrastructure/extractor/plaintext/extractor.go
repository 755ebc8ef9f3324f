package plaintext

import (
	"context"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the whole file as UTF-8. Unreadable or non-UTF-8 files yield
// an empty ExtractionFailed result.
func (e *Extractor) Extract(_ context.Context, path string) domain.Extraction {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("text_extraction_failed", "path", path, "error", err)
		return domain.ExtractionFailure()
	}
	if !utf8.Valid(raw) {
		slog.Debug("text_extraction_failed", "path", path, "error", "invalid utf-8")
		return domain.ExtractionFailure()
	}
	return domain.ExtractedText(string(raw), 0)
}
