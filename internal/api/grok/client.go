// Package grok is the LLM collaborator: it sends the assembled trading
// prompt to the x.ai chat completions API and parses the JSON decision
// out of the answer.
package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "forex-trader/internal/platform/http"
	"forex-trader/models"
)

const (
	defaultBaseURL = "https://api.x.ai/v1"
	defaultModel   = "grok-4-latest"

	systemPrompt = "You are a disciplined, data-driven forex trading AI. Respond ONLY in JSON."
)

// Client is the x.ai chat completions client.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *httpclient.Client
	logger      zerolog.Logger
}

// ClientOptions holds options for creating a new Grok client.
type ClientOptions struct {
	APIKey         string
	Model          string
	Temperature    float64
	RequestTimeout time.Duration
}

// NewClient creates a new Grok API client.
func NewClient(options ClientOptions) *Client {
	if options.Model == "" {
		options.Model = defaultModel
	}
	if options.Temperature == 0 {
		options.Temperature = 0.7
	}
	if options.RequestTimeout == 0 {
		options.RequestTimeout = 60 * time.Second
	}

	return &Client{
		apiKey:      options.APIKey,
		baseURL:     defaultBaseURL,
		model:       options.Model,
		temperature: options.Temperature,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: 1,
		}),
		logger: log.With().Str("component", "grok_client").Logger(),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt and returns the raw model answer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("missing Grok API key")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var data chatResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing completion JSON")
		return "", fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Error != nil {
		return "", fmt.Errorf("Grok API error: %s", data.Error.Message)
	}
	if len(data.Choices) == 0 {
		c.logger.Warn().Msg("Grok returned no choices")
		return "", fmt.Errorf("empty completion")
	}

	return data.Choices[0].Message.Content, nil
}

// Decide asks the model for a trading decision and parses its JSON answer.
func (c *Client) Decide(ctx context.Context, prompt string) (*models.TradeDecision, error) {
	content, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseDecision(content)
}

// ParseDecision decodes a trade decision from a model answer, tolerating
// a markdown code fence around the JSON.
func ParseDecision(content string) (*models.TradeDecision, error) {
	content = stripFences(content)

	var decision models.TradeDecision
	if err := json.Unmarshal([]byte(content), &decision); err != nil {
		return nil, fmt.Errorf("parsing decision JSON: %w", err)
	}
	return &decision, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	return content
}
