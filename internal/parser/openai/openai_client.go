package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"extractos/internal/domain"
	"extractos/internal/parser"
	"extractos/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

func init() {
	parser.RegisterProvider(domain.ProviderOpenAI, func(cfg domain.APIConfig, timeoutSecs int) (port.ExtractionClient, error) {
		return NewClient(cfg, timeoutSecs), nil
	})
}

// Client implements port.ExtractionClient using the OpenAI Chat Completions API.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	endpoint    string
	client      *http.Client
}

// NewClient creates an OpenAI-based extraction client from a request config.
func NewClient(cfg domain.APIConfig, timeoutSecs int) *Client {
	return NewClientWithEndpoint(cfg, timeoutSecs, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg domain.APIConfig, timeoutSecs int, endpoint string) *Client {
	cfg.ApplyDefaults()
	timeout := time.Duration(timeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	reqBody := map[string]interface{}{
		"model":                 c.model,
		"max_completion_tokens": c.maxTokens,
		"temperature":           c.temperature,
		"messages":              buildMessages(input),
	}
	if input.Schema != nil {
		reqBody["response_format"] = map[string]interface{}{"type": "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &parser.BackendError{Provider: "openai", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &parser.BackendError{Provider: "openai", Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error: %s", string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parser.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, &parser.BackendError{Provider: "openai", StatusCode: resp.StatusCode, Err: baseErr}
	}

	return parseResponse(respBody, c.model, input)
}

// buildMessages assembles the single user turn (prompt text + high-detail JPEG
// image) and, in schema mode, a system turn carrying the expected JSON Schema.
func buildMessages(input port.ExtractInput) []map[string]interface{} {
	encoded := base64.StdEncoding.EncodeToString(input.ImageJPEG)
	contentBlocks := []map[string]interface{}{
		{
			"type": "text",
			"text": input.Prompt,
		},
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url":    "data:image/jpeg;base64," + encoded,
				"detail": "high",
			},
		},
	}

	messages := []map[string]interface{}{
		{
			"role":    "user",
			"content": contentBlocks,
		},
	}
	if input.Schema != nil {
		schemaJSON, _ := json.MarshalIndent(input.Schema.JSONSchema(), "", "  ")
		messages = append(messages, map[string]interface{}{
			"role":    "system",
			"content": "Return ONLY JSON that matches this JSON Schema:\n" + string(schemaJSON),
		})
	}
	return messages
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseResponse(body []byte, model string, input port.ExtractInput) (*port.ExtractOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	usage := domain.PageUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		TotalCost:        parser.CostUSD(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}

	raw, err := parser.ParseJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	record := domain.Record(raw)
	if input.Schema != nil {
		record, err = input.Schema.Coerce(raw)
		if err != nil {
			return nil, err
		}
	}

	return &port.ExtractOutput{Record: record, Usage: usage}, nil
}
