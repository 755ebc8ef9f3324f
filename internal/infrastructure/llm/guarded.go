package llm

import (
	"context"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

// Guarded bounds every inference call with a timeout and runs it through the
// resilience executor under a per-backend operation name.
type Guarded struct {
	inner     ports.ZeroShotClassifier
	executor  *resilience.Executor
	timeout   time.Duration
	operation string
}

func NewGuarded(inner ports.ZeroShotClassifier, executor *resilience.Executor, timeout time.Duration, backend string) *Guarded {
	return &Guarded{
		inner:     inner,
		executor:  executor,
		timeout:   timeout,
		operation: "zero_shot_" + backend,
	}
}

func (g *Guarded) Classify(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	scores, err := resilience.Do(ctx, g.executor, g.operation, func(ctx context.Context) ([]domain.LabelScore, error) {
		return g.inner.Classify(ctx, text, labels)
	}, resilience.ClassifyInferenceError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(g.operation, err)
	}
	return scores, nil
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if resilience.IsCircuitOpen(err) || resilience.ClassifyInferenceError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
