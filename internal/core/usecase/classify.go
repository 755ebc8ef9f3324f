package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

const (
	abstainEmptyText      = "empty_text"
	abstainLowConfidence  = "low_confidence"
	abstainNoLabels       = "no_labels"
	abstainInferenceError = "inference_error"
	abstainUnknownLabel   = "unknown_label"
)

// CategoryClassifier turns a zero-shot ranking into a routing decision.
type CategoryClassifier struct {
	model    ports.ZeroShotClassifier
	observer ports.OrganizeObserver
}

func NewCategoryClassifier(model ports.ZeroShotClassifier, observer ports.OrganizeObserver) *CategoryClassifier {
	return &CategoryClassifier{model: model, observer: observer}
}

// Classify returns the top AI category when its score is strictly above
// domain.ConfidenceThreshold. Any other outcome is an abstention.
func (c *CategoryClassifier) Classify(ctx context.Context, text string) (domain.Category, bool) {
	if strings.TrimSpace(text) == "" {
		c.abstain(abstainEmptyText)
		return "", false
	}

	ranking, err := c.model.Classify(ctx, truncateRunes(text, domain.MaxClassifyChars), domain.AILabels())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("classifier_abstained", "reason", abstainInferenceError, "error", err)
		} else {
			slog.Warn("classifier_abstained", "reason", abstainInferenceError, "error", err)
		}
		c.abstain(abstainInferenceError)
		return "", false
	}
	if len(ranking) == 0 {
		c.abstain(abstainNoLabels)
		return "", false
	}

	top := topScore(ranking)
	if top.Score <= domain.ConfidenceThreshold {
		slog.Debug("classifier_abstained", "reason", abstainLowConfidence, "label", top.Label, "score", top.Score)
		c.abstain(abstainLowConfidence)
		return "", false
	}
	if !domain.IsAICategory(top.Label) {
		slog.Warn("classifier_abstained", "reason", abstainUnknownLabel, "label", top.Label)
		c.abstain(abstainUnknownLabel)
		return "", false
	}
	return domain.Category(top.Label), true
}

func (c *CategoryClassifier) abstain(reason string) {
	if c.observer != nil {
		c.observer.ObserveAbstention(reason)
	}
}

// topScore picks the highest score; ties keep the earlier entry.
func topScore(ranking []domain.LabelScore) domain.LabelScore {
	top := ranking[0]
	for _, entry := range ranking[1:] {
		if entry.Score > top.Score {
			top = entry
		}
	}
	return top
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for idx := range text {
		if count == limit {
			return text[:idx]
		}
		count++
	}
	return text
}
