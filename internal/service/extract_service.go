package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	retry "github.com/avast/retry-go/v4"

	"extractos/internal/config"
	"extractos/internal/domain"
	"extractos/internal/imaging"
	"extractos/internal/parser"
	"extractos/internal/port"
	"extractos/internal/schema"
)

// PageLoader turns an input file into its page images.
type PageLoader interface {
	Load(ctx context.Context, path string) ([]image.Image, error)
}

// ClientFactory creates an extraction client for one request's API config.
type ClientFactory func(cfg domain.APIConfig, timeoutSecs int) (port.ExtractionClient, error)

// ExtractService defines the document extraction contract.
type ExtractService interface {
	ExtractBatch(ctx context.Context, req domain.ExtractionRequest, paths []string) (*domain.BatchResult, error)
}

type extractService struct {
	loader  PageLoader
	factory ClientFactory
	cfg     *config.ExtractConfig
}

// NewExtractService creates a new ExtractService implementation.
func NewExtractService(loader PageLoader, cfg *config.ExtractConfig) ExtractService {
	return NewExtractServiceWithFactory(loader, parser.NewClient, cfg)
}

// NewExtractServiceWithFactory creates an ExtractService with a custom client
// factory (for testing).
func NewExtractServiceWithFactory(loader PageLoader, factory ClientFactory, cfg *config.ExtractConfig) ExtractService {
	return &extractService{
		loader:  loader,
		factory: factory,
		cfg:     cfg,
	}
}

// ExtractBatch runs the full pipeline over a batch of files: normalize to page
// images, invoke the model per page, collect records and usage. A failing file
// becomes an error entry in the usage report and does not abort the batch;
// request-level problems (empty batch, bad schema, bad provider config) fail
// the whole call.
func (s *extractService) ExtractBatch(ctx context.Context, req domain.ExtractionRequest, paths []string) (*domain.BatchResult, error) {
	if len(paths) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	var compiled *schema.Compiled
	if len(req.Schema) > 0 {
		var err error
		compiled, err = schema.Compile(req.Schema)
		if err != nil {
			return nil, err
		}
	}

	client, err := s.factory(req.APIConfig, s.cfg.TimeoutSecs)
	if err != nil {
		return nil, err
	}

	prompt := parser.BuildPrompt(req.Prompt, compiled)

	result := &domain.BatchResult{
		Data: []domain.Record{},
		Usage: domain.BatchUsage{
			Files:     make([]domain.FileResult, 0, len(paths)),
			FileCount: len(paths),
		},
	}

	var batchCost float64
	for _, path := range paths {
		fileName := filepath.Base(path)
		records, fileResult := s.extractFile(ctx, client, compiled, prompt, path)

		if fileResult.Error != "" {
			log.Printf("extractService.ExtractBatch: file %s failed: %s", fileName, fileResult.Error)
		} else {
			result.Data = append(result.Data, records...)
			result.Usage.SuccessfulExtractions += len(records)
		}
		batchCost += fileResult.TotalCost
		result.Usage.Files = append(result.Usage.Files, fileResult)
	}
	result.Usage.TotalCost = parser.RoundCost(batchCost)

	return result, nil
}

// extractFile processes one file. Any failure after some pages succeeded still
// reports the cost already incurred alongside the error.
func (s *extractService) extractFile(ctx context.Context, client port.ExtractionClient, compiled *schema.Compiled, prompt, path string) ([]domain.Record, domain.FileResult) {
	fileName := filepath.Base(path)
	fileResult := domain.FileResult{FileName: fileName}

	if info, err := os.Stat(path); err == nil {
		if maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024; maxBytes > 0 && info.Size() > maxBytes {
			fileResult.Error = fmt.Sprintf("%v: %s (%d bytes)", domain.ErrFileTooLarge, fileName, info.Size())
			return nil, fileResult
		}
	}

	pages, err := s.loader.Load(ctx, path)
	if err != nil {
		fileResult.Error = err.Error()
		return nil, fileResult
	}
	fileResult.PageCount = len(pages)

	var (
		records  []domain.Record
		fileCost float64
	)
	for i, page := range pages {
		jpegBytes, err := imaging.EncodeJPEG(page)
		if err != nil {
			fileResult.Error = err.Error()
			fileResult.TotalCost = parser.RoundCost(fileCost)
			return nil, fileResult
		}

		out, err := s.extractPage(ctx, client, port.ExtractInput{
			ImageJPEG: jpegBytes,
			Prompt:    prompt,
			Schema:    compiled,
		})
		if err != nil {
			fileResult.Error = err.Error()
			fileResult.TotalCost = parser.RoundCost(fileCost)
			return nil, fileResult
		}

		usage := out.Usage
		usage.FileName = fileName
		usage.PageNumber = i + 1
		fileResult.PageMetrics = append(fileResult.PageMetrics, usage)
		fileCost += usage.TotalCost
		records = append(records, out.Record)
	}
	fileResult.TotalCost = parser.RoundCost(fileCost)

	return records, fileResult
}

// extractPage performs a single model call, retrying rate-limit and backend
// failures up to the configured attempt count. One attempt means no retry.
func (s *extractService) extractPage(ctx context.Context, client port.ExtractionClient, input port.ExtractInput) (*port.ExtractOutput, error) {
	if s.cfg.RetryAttempts <= 1 {
		return client.Extract(ctx, input)
	}

	var out *port.ExtractOutput
	err := retry.Do(
		func() error {
			var err error
			out, err = client.Extract(ctx, input)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.cfg.RetryAttempts)),
		retry.Delay(time.Duration(s.cfg.RetryDelaySecs)*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isTransient reports whether a model call failure is worth retrying. Parse
// and validation failures are deterministic and are not.
func isTransient(err error) bool {
	var rateLimitErr *parser.RateLimitError
	var backendErr *parser.BackendError
	return errors.As(err, &rateLimitErr) || errors.As(err, &backendErr)
}
