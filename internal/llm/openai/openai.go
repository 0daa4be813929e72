// Package openai is an OpenAI-compatible chat completions client.
// Gemini works through its OpenAI-compatible endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"eventplanner/internal/llm"
	"eventplanner/internal/observability"
)

// Config configures the chat client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Temperature applies to free-text generation, CreateTemperature to the final plan.
	// Classification and extraction always run at 0.
	Temperature       float64
	CreateTemperature float64
}

// Client implements llm.Client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	temp       float64
	createTemp float64
	metrics    *observability.ClientMetrics
}

// NewClient creates a client reading the API key from cfg.APIKeyEnv.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		temp:       cfg.Temperature,
		createTemp: cfg.CreateTemperature,
		metrics:    observability.NewClientMetrics("llm", "ai.chat", "openai"),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string `json:"name"`
	Schema any    `json:"schema"`
	Strict bool   `json:"strict"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete returns the model's text answer.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	return c.chat(ctx, req, nil)
}

// CompleteJSON asks for an answer conforming to schema and decodes it into out.
func (c *Client) CompleteJSON(ctx context.Context, req llm.Request, schema llm.Schema, out any) error {
	text, err := c.chat(ctx, req, &responseFormat{
		Type: "json_schema",
		// Non-strict: strict mode rejects optional properties.
		JSONSchema: &jsonSchemaFormat{Name: schema.Name, Schema: schema.Schema, Strict: false},
	})
	if err != nil {
		return err
	}
	return llm.DecodeJSON(text, out)
}

func (c *Client) temperature(task llm.Task) float64 {
	switch task {
	case llm.TaskClassifyIntent, llm.TaskExtractEvent:
		return 0
	case llm.TaskGeneratePlan:
		return c.createTemp
	default:
		return c.temp
	}
}

func (c *Client) chat(ctx context.Context, req llm.Request, format *responseFormat) (string, error) {
	body := chatRequest{
		Model:          c.model,
		Temperature:    c.temperature(req.Task),
		ResponseFormat: format,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.User})
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	url := c.baseURL + "/chat/completions"

	for attempt := 0; ; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		start := time.Now()
		resp, err := c.client.Do(httpReq)
		if err != nil {
			c.metrics.Record(ctx, c.model, 0, time.Since(start), err)
			if attempt < c.maxRetries && ctx.Err() == nil {
				if err := sleep(ctx, retryDelay(attempt, "")); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("chat completion request: %w", err)
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			status := fmt.Errorf("chat completion failed: %s", resp.Status)
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), status)
			if attempt >= c.maxRetries {
				return "", status
			}
			if err := sleep(ctx, retryDelay(attempt, resp.Header.Get("Retry-After"))); err != nil {
				return "", err
			}
			continue
		}
		if resp.StatusCode >= 300 {
			status := fmt.Errorf("chat completion failed: %s: %s", resp.Status, bytes.TrimSpace(truncate(payload, 512)))
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), status)
			return "", status
		}
		if readErr != nil {
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), readErr)
			return "", readErr
		}

		var out chatResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), err)
			return "", fmt.Errorf("decode chat completion: %w", err)
		}
		if out.Error != nil {
			err := errors.New(out.Error.Message)
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), err)
			return "", fmt.Errorf("chat completion error: %w", err)
		}
		if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
			c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), llm.ErrNoContent)
			return "", llm.ErrNoContent
		}
		c.metrics.Record(ctx, c.model, resp.StatusCode, time.Since(start), nil)
		return out.Choices[0].Message.Content, nil
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	d := 500 * time.Millisecond << attempt
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}
