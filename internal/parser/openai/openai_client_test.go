package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extractos/internal/domain"
	"extractos/internal/parser"
	openai "extractos/internal/parser/openai"
	"extractos/internal/port"
	"extractos/internal/schema"
)

func newTestClient(serverURL string) *openai.Client {
	cfg := domain.APIConfig{
		Provider: domain.ProviderOpenAI,
		APIKey:   "test-openai-key",
		Model:    "gpt-4o",
	}
	return openai.NewClientWithEndpoint(cfg, 30, serverURL)
}

func successResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     1000,
			"completion_tokens": 200,
			"total_tokens":      1200,
		},
	}
}

func TestClient_Extract_Success(t *testing.T) {
	responseBody := successResponse(`{"vendor": "Acme Corp", "total": 99.5}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify auth header
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// Verify request body
		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(2048), reqBody["max_completion_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		textBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Equal(t, "extract the invoice", textBlock["text"])

		imgBlock := content[1].(map[string]interface{})
		assert.Equal(t, "image_url", imgBlock["type"])
		imgURL := imgBlock["image_url"].(map[string]interface{})
		assert.True(t, strings.HasPrefix(imgURL["url"].(string), "data:image/jpeg;base64,"))
		assert.Equal(t, "high", imgURL["detail"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	out, err := c.Extract(context.Background(), port.ExtractInput{
		ImageJPEG: []byte("fake-jpeg-bytes"),
		Prompt:    "extract the invoice",
	})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "Acme Corp", out.Record["vendor"])
	assert.Equal(t, 99.5, out.Record["total"])

	assert.Equal(t, 1000, out.Usage.PromptTokens)
	assert.Equal(t, 200, out.Usage.CompletionTokens)
	assert.Equal(t, 1200, out.Usage.TotalTokens)
	// 1000 in at $2.50/Mtok + 200 out at $10.00/Mtok
	assert.Equal(t, 0.0045, out.Usage.TotalCost)
}

func TestClient_Extract_SchemaMode(t *testing.T) {
	compiled, err := schema.Compile(domain.SchemaDefinition{
		"vendor": {Type: "string"},
		"total":  {Type: "float"},
	})
	require.NoError(t, err)

	responseBody := successResponse(`{"vendor": "Acme Corp", "total": "99.5", "noise": true}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		// schema mode forces JSON output and adds a schema system turn
		rf := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", rf["type"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		sys := messages[1].(map[string]interface{})
		assert.Equal(t, "system", sys["role"])
		assert.Contains(t, sys["content"].(string), "JSON Schema")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	out, err := c.Extract(context.Background(), port.ExtractInput{
		ImageJPEG: []byte("fake-jpeg-bytes"),
		Prompt:    "extract",
		Schema:    compiled,
	})

	require.NoError(t, err)
	// coercion fixes the numeric string and drops the undeclared key
	assert.Equal(t, 99.5, out.Record["total"])
	assert.NotContains(t, out.Record, "noise")
}

func TestClient_Extract_RepairsFencedResponse(t *testing.T) {
	responseBody := successResponse("Here you go:\n```json\n{\"vendor\": \"Acme Corp\"}\n```")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	out, err := c.Extract(context.Background(), port.ExtractInput{
		ImageJPEG: []byte("fake"),
		Prompt:    "extract",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", out.Record["vendor"])
}

func TestClient_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Extract(context.Background(), port.ExtractInput{ImageJPEG: []byte("fake"), Prompt: "extract"})
	require.Error(t, err)

	var rateLimitErr *parser.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, "openai", rateLimitErr.Provider)
	assert.Equal(t, float64(17), rateLimitErr.RetryAfter.Seconds())
}

func TestClient_Extract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Extract(context.Background(), port.ExtractInput{ImageJPEG: []byte("fake"), Prompt: "extract"})
	require.Error(t, err)

	var backendErr *parser.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.StatusCode)
}

func TestClient_Extract_TruncatedOutput(t *testing.T) {
	responseBody := successResponse(`{"vendor": "Acme`)
	responseBody["choices"].([]map[string]interface{})[0]["finish_reason"] = "length"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Extract(context.Background(), port.ExtractInput{ImageJPEG: []byte("fake"), Prompt: "extract"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finish_reason: length")
}

func TestClient_Extract_UnparseableResponse(t *testing.T) {
	responseBody := successResponse("I am unable to read this document.")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Extract(context.Background(), port.ExtractInput{ImageJPEG: []byte("fake"), Prompt: "extract"})
	require.Error(t, err)

	var parseErr *parser.ResponseParseError
	assert.ErrorAs(t, err, &parseErr)
}
