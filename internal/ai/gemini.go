package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"nutrify/diet-tracker/internal/config"
)

// GeminiClient generates text with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client; cfg.Timeout bounds each call. An empty
// BaseURL or APIVersion keeps the SDK default.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	timeout := cfg.Timeout
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
			Timeout:    &timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Generate sends prompt as a single user turn and returns the text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	return text, nil
}

// classify maps SDK errors onto ErrServiceUnavailable and ErrMalformedResponse.
func classify(err error) error {
	var (
		apiErr    genai.APIError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, apiErr.Code, apiErr.Message)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	default:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
}
