// Package openai scores candidate labels through an OpenAI-compatible chat
// completion API in JSON mode.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

type Classifier struct {
	api   *openai.Client
	model string
}

// New supports custom base URLs for OpenAI-compatible providers.
func New(baseURL, apiKey, model string) *Classifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Classifier{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: llm.ScoresPrompt(text, labels)},
		},
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, llm.ErrNoScores
	}
	return llm.ParseScores(resp.Choices[0].Message.Content, labels)
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &resilience.HTTPStatusError{
			Service:    "openai",
			Operation:  "chat",
			StatusCode: apiErr.HTTPStatusCode,
			Status:     fmt.Sprintf("%d %s", apiErr.HTTPStatusCode, http.StatusText(apiErr.HTTPStatusCode)),
			Body:       apiErr.Message,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &resilience.HTTPStatusError{
			Service:    "openai",
			Operation:  "chat",
			StatusCode: reqErr.HTTPStatusCode,
			Status:     fmt.Sprintf("%d %s", reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode)),
			Body:       string(reqErr.Body),
		}
	}
	return fmt.Errorf("openai chat request: %w", err)
}
