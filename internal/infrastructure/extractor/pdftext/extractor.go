package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract joins the plain text of every page with newlines. A page without
// text contributes an empty line. Corrupt documents, including ones that make
// the parser panic, yield an empty ExtractionFailed result.
func (e *Extractor) Extract(ctx context.Context, path string) domain.Extraction {
	text, pages, err := extractPages(ctx, path)
	if err != nil {
		slog.Debug("pdf_extraction_failed", "path", path, "error", err)
		return domain.ExtractionFailure()
	}
	return domain.ExtractedText(text, pages)
}

func extractPages(ctx context.Context, path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	parts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", 0, fmt.Errorf("page %d text: %w", i, err)
		}
		parts = append(parts, pageText)
	}

	joined := strings.Join(parts, "\n")
	if strings.TrimSpace(joined) == "" {
		return "", total, nil
	}
	return joined, total, nil
}
