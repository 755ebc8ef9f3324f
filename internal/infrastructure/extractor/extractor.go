// Package extractor picks a text extractor by file extension.
package extractor

import (
	"context"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
	"github.com/kirillkom/file-organizer/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/file-organizer/internal/infrastructure/extractor/plaintext"
)

type Dispatcher struct {
	byExt map[string]ports.TextExtractor
}

func New() *Dispatcher {
	return NewDispatcher(map[string]ports.TextExtractor{
		".pdf": pdftext.NewExtractor(),
		".txt": plaintext.NewExtractor(),
	})
}

func NewDispatcher(byExt map[string]ports.TextExtractor) *Dispatcher {
	return &Dispatcher{byExt: byExt}
}

func (d *Dispatcher) Extract(ctx context.Context, path string) domain.Extraction {
	extractor, ok := d.byExt[domain.Extension(path)]
	if !ok {
		return domain.Extraction{Outcome: domain.ExtractionUnsupported}
	}
	return extractor.Extract(ctx, path)
}
