package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

// Lazy builds its backend on the first Classify call and reuses it for the
// rest of the process. A build error is cached as well.
type Lazy struct {
	build func() (ports.ZeroShotClassifier, error)

	once  sync.Once
	model ports.ZeroShotClassifier
	err   error
}

func NewLazy(build func() (ports.ZeroShotClassifier, error)) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) Classify(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	model, err := l.get()
	if err != nil {
		return nil, err
	}
	return model.Classify(ctx, text, labels)
}

func (l *Lazy) get() (ports.ZeroShotClassifier, error) {
	l.once.Do(func() {
		if l.build == nil {
			l.err = fmt.Errorf("classifier backend builder is nil")
			return
		}
		l.model, l.err = l.build()
		if l.err != nil {
			l.err = fmt.Errorf("init classifier backend: %w", l.err)
		}
	})
	return l.model, l.err
}
