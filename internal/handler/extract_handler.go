package handler

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"extractos/internal/domain"
	"extractos/internal/schema"
	"extractos/internal/service"
)

// ExtractHandler handles document extraction endpoints.
type ExtractHandler struct {
	extractService service.ExtractService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extractService service.ExtractService) *ExtractHandler {
	return &ExtractHandler{extractService: extractService}
}

// ExtractFiles handles POST /api/v1/extract/files
// @Summary Extract structured data from documents
// @Description Upload PDFs or images and extract structured data with a vision model. Optionally constrain the output with a schema definition.
// @Tags extract
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents to process (PDF, JPG, or PNG; repeatable)"
// @Param api_provider formData string true "Model provider (openai or azure)"
// @Param api_key formData string true "Provider API key"
// @Param model formData string false "Model name" default(gpt-4o)
// @Param max_tokens formData int false "Max output tokens" default(2048)
// @Param temperature formData number false "Sampling temperature" default(0.3)
// @Param prompt formData string false "Custom extraction prompt"
// @Param schema_definition formData string false "JSON schema definition for the output records"
// @Param api_version formData string false "Azure API version"
// @Param azure_endpoint formData string false "Azure resource endpoint"
// @Param azure_deployment formData string false "Azure deployment name"
// @Success 200 {object} APIResponse{data=domain.BatchResult} "Extraction results with usage report"
// @Failure 400 {object} APIResponse "Invalid request, schema, or provider config"
// @Failure 429 {object} APIResponse "Provider rate limit exceeded"
// @Failure 502 {object} APIResponse "Provider request failed"
// @Router /extract/files [post]
func (h *ExtractHandler) ExtractFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form: "+err.Error())
		return
	}

	req, err := parseExtractionRequest(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if raw := c.PostForm("schema_definition"); raw != "" {
		def, err := schema.Parse([]byte(raw))
		if err != nil {
			HandleError(c, err)
			return
		}
		req.Schema = def
	}

	uploads := make([]*multipart.FileHeader, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
		if _, ok := domain.AllowedExtensions[ext]; !ok {
			log.Printf("extractHandler.ExtractFiles: skipping unsupported file %s", header.Filename)
			continue
		}
		uploads = append(uploads, header)
	}
	if len(uploads) == 0 {
		HandleError(c, domain.ErrEmptyBatch)
		return
	}

	tmpDir, err := os.MkdirTemp("", "extractos-upload-*")
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to allocate workspace")
		return
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			log.Printf("extractHandler.ExtractFiles: failed to remove temp dir %s: %v", tmpDir, rmErr)
		}
	}()

	paths := make([]string, 0, len(uploads))
	for i, header := range uploads {
		path, err := saveUpload(tmpDir, i, header)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to store upload "+header.Filename)
			return
		}
		paths = append(paths, path)
	}

	result, err := h.extractService.ExtractBatch(c.Request.Context(), req, paths)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// parseExtractionRequest reads provider config and prompt from form fields.
func parseExtractionRequest(c *gin.Context) (domain.ExtractionRequest, error) {
	req := domain.ExtractionRequest{
		APIConfig: domain.APIConfig{
			Provider:        domain.Provider(c.PostForm("api_provider")),
			APIKey:          c.PostForm("api_key"),
			Model:           c.PostForm("model"),
			APIVersion:      c.PostForm("api_version"),
			AzureEndpoint:   c.PostForm("azure_endpoint"),
			AzureDeployment: c.PostForm("azure_deployment"),
		},
		Prompt: c.PostForm("prompt"),
	}

	if req.APIConfig.Provider == "" {
		return req, fmt.Errorf("api_provider field is required")
	}
	if req.APIConfig.APIKey == "" {
		return req, fmt.Errorf("api_key field is required")
	}

	if raw := c.PostForm("max_tokens"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return req, fmt.Errorf("max_tokens must be a positive integer")
		}
		req.APIConfig.MaxTokens = n
	}
	if raw := c.PostForm("temperature"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 2 {
			return req, fmt.Errorf("temperature must be a number between 0 and 2")
		}
		req.APIConfig.Temperature = f
	}

	return req, nil
}

// saveUpload writes one multipart file into the batch workspace. The index
// prefix keeps same-named uploads from clobbering each other while the base
// name stays visible in the usage report.
func saveUpload(tmpDir string, index int, header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	dir := filepath.Join(tmpDir, strconv.Itoa(index))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
