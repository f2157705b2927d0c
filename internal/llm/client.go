// Package llm provides the generation backend boundary: an OpenAI-compatible
// completion client, a scripted mock for tests, and the serving-layer cache
// of generator instances.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reagent/internal/observability"
)

// Config holds connection settings for the completion endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client speaks the OpenAI-compatible text completions API: plain prompt in,
// generated text out, no streaming. The orchestrator treats it as an opaque
// generator.
type Client struct {
	model       string
	apiKey      string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *observability.Logger
}

// NewClient constructs a completion client for the given model.
func NewClient(model string, config Config, logger *observability.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return &Client{
		model:       model,
		apiKey:      config.APIKey,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Model returns the resolved model identifier.
func (c *Client) Model() string { return c.model }

type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stream      bool     `json:"stream"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate performs one synchronous completion call. Any transport or API
// failure is returned as-is: backend unavailability is the one fatal failure
// mode of a run and the orchestrator propagates it.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := completionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      false,
		// The model tends to hallucinate tool results; cutting the
		// completion at the next observation label prevents that.
		Stop: []string{"OBSERVATION:"},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("completion request", "model", c.model, "prompt_bytes", len(prompt))
	started := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, truncate(string(data), 512))
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion endpoint returned no choices")
	}

	c.logger.Debug("completion response", "model", c.model,
		"output_bytes", len(parsed.Choices[0].Text), "elapsed", time.Since(started))
	return parsed.Choices[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
