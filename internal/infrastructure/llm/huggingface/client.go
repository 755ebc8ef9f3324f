// Package huggingface calls a zero-shot-classification inference endpoint.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

const DefaultModel = "valhalla/distilbart-mnli-12-3"

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// New targets baseURL/model. The model may be empty when baseURL already
// points at a concrete model endpoint.
func New(baseURL, model, token string) *Client {
	endpoint := strings.TrimRight(baseURL, "/")
	if model = strings.Trim(model, "/"); model != "" {
		endpoint += "/" + model
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

func (c *Client) Classify(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	body, err := json.Marshal(request{
		Inputs:     text,
		Parameters: parameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface classify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read classify response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &resilience.HTTPStatusError{
			Service:    "huggingface",
			Operation:  "classify",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncate(string(raw), 2048),
		}
	}

	scores, err := decodeScores(raw)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, llm.ErrNoScores
	}
	return llm.Rank(scores), nil
}

// decodeScores accepts the pipeline shape {"labels":[...],"scores":[...]}
// and the router shape [{"label":...,"score":...}].
func decodeScores(raw []byte) ([]domain.LabelScore, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pairs []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
		}
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return nil, fmt.Errorf("decode classify response: %w", err)
		}
		out := make([]domain.LabelScore, 0, len(pairs))
		for _, pair := range pairs {
			out = append(out, domain.LabelScore{Label: pair.Label, Score: pair.Score})
		}
		return out, nil
	}

	var parallel struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
		Error  string    `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &parallel); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if parallel.Error != "" {
		return nil, fmt.Errorf("huggingface classify: %s", parallel.Error)
	}
	if len(parallel.Labels) != len(parallel.Scores) {
		return nil, fmt.Errorf("decode classify response: %d labels for %d scores", len(parallel.Labels), len(parallel.Scores))
	}
	out := make([]domain.LabelScore, 0, len(parallel.Labels))
	for i, label := range parallel.Labels {
		out = append(out, domain.LabelScore{Label: label, Score: parallel.Scores[i]})
	}
	return out, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
