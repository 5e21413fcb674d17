package domain

import (
	"encoding/json"
	"strings"
)

// APIConfig holds credentials and generation parameters for an LLM backend.
type APIConfig struct {
	Provider        Provider `json:"provider"`
	APIKey          string   `json:"-"`
	Model           string   `json:"model"`
	APIVersion      string   `json:"api_version,omitempty"`
	AzureEndpoint   string   `json:"azure_endpoint,omitempty"`
	AzureDeployment string   `json:"azure_deployment,omitempty"`
	MaxTokens       int      `json:"max_tokens"`
	Temperature     float64  `json:"temperature"`
}

// ApplyDefaults fills zero-valued generation parameters with the service defaults.
func (c *APIConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

// Validate checks provider identity and provider-specific required fields.
// Azure requires endpoint, deployment, and API version together.
func (c *APIConfig) Validate() error {
	switch Provider(strings.ToLower(string(c.Provider))) {
	case ProviderOpenAI:
		return nil
	case ProviderAzure:
		if c.AzureEndpoint == "" || c.AzureDeployment == "" || c.APIVersion == "" {
			return ErrInvalidProviderConfig
		}
		return nil
	default:
		return ErrUnsupportedProvider
	}
}

// FieldSpec describes a single schema field. A nil Default marks the field
// required; Properties, when non-empty, turns the field into a nested object.
type FieldSpec struct {
	Type        string               `json:"type,omitempty"`
	Description string               `json:"description,omitempty"`
	Default     *json.RawMessage     `json:"default,omitempty"`
	Properties  map[string]FieldSpec `json:"properties,omitempty"`
}

// SchemaDefinition maps field names to their specs.
type SchemaDefinition map[string]FieldSpec

// Record is one structured extraction result.
type Record map[string]any

// ExtractionRequest carries everything needed to extract from a batch of files.
type ExtractionRequest struct {
	APIConfig APIConfig
	Prompt    string
	Schema    SchemaDefinition
}

// PageUsage records token counts and cost for one model invocation.
type PageUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	FileName         string  `json:"file_name"`
	PageNumber       int     `json:"page_number"`
}

// FileResult is the per-file usage summary. Error is set when the file failed
// and no records were extracted from it.
type FileResult struct {
	FileName    string      `json:"file_name"`
	PageCount   int         `json:"page_count,omitempty"`
	PageMetrics []PageUsage `json:"page_metrics,omitempty"`
	TotalCost   float64     `json:"total_cost"`
	Error       string      `json:"error,omitempty"`
}

// BatchUsage aggregates usage across all files of a batch.
type BatchUsage struct {
	Files                 []FileResult `json:"files"`
	FileCount             int          `json:"file_count"`
	SuccessfulExtractions int          `json:"successful_extractions"`
	TotalCost             float64      `json:"total_cost"`
}

// BatchResult is the full response payload for one extraction call.
type BatchResult struct {
	Data  []Record   `json:"data"`
	Usage BatchUsage `json:"usage"`
}
