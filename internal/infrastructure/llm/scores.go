// Package llm holds the pieces shared by zero-shot classifier backends.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

var ErrNoScores = errors.New("model returned no usable label scores")

// ScoresPrompt asks a generative model for one probability per label as a
// flat JSON object.
func ScoresPrompt(text string, labels []string) string {
	return `You are a document classifier.
Estimate how likely the document belongs to each candidate category.
Return strict JSON object with one key per category and a number from 0 to 1 as value.
Use exactly these keys: ` + strings.Join(labels, ", ") + `.
No markdown, no extra keys.

Document:
` + text
}

// ParseScores reads a model reply such as {"Resume":0.9,"Bill":0.1}, also
// accepting the object nested under "scores" and surrounding prose.
func ParseScores(raw string, labels []string) ([]domain.LabelScore, error) {
	body := extractJSONObject(raw)

	var nested struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(body), &nested); err == nil && len(nested.Scores) > 0 {
		return NormalizeScores(nested.Scores, labels)
	}

	var flat map[string]any
	if err := json.Unmarshal([]byte(body), &flat); err != nil {
		return nil, fmt.Errorf("parse label scores json: %w", err)
	}
	scores := make(map[string]float64, len(flat))
	for key, value := range flat {
		if number, ok := value.(float64); ok {
			scores[key] = number
		}
	}
	return NormalizeScores(scores, labels)
}

// NormalizeScores keeps candidate labels only, matched case-insensitively,
// clamps negatives to zero, rescales to sum to 1 and ranks the result.
func NormalizeScores(raw map[string]float64, labels []string) ([]domain.LabelScore, error) {
	canonical := make(map[string]string, len(labels))
	for _, label := range labels {
		canonical[strings.ToLower(label)] = label
	}

	merged := make(map[string]float64, len(labels))
	total := 0.0
	for key, score := range raw {
		label, ok := canonical[strings.ToLower(strings.TrimSpace(key))]
		if !ok || score <= 0 {
			continue
		}
		merged[label] += score
		total += score
	}
	if total == 0 {
		return nil, ErrNoScores
	}

	out := make([]domain.LabelScore, 0, len(labels))
	for _, label := range labels {
		out = append(out, domain.LabelScore{Label: label, Score: merged[label] / total})
	}
	return Rank(out), nil
}

// Rank orders scores descending. Equal scores keep their input order.
func Rank(scores []domain.LabelScore) []domain.LabelScore {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
