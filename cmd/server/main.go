package main

import (
	"fmt"
	"log"
	"net/http"

	_ "extractos/docs"
	"extractos/internal/config"
	"extractos/internal/handler"
	"extractos/internal/imaging"
	_ "extractos/internal/parser/azure"
	_ "extractos/internal/parser/openai"
	"extractos/internal/router"
	"extractos/internal/service"
)

// @title Extractos API
// @version 1.0
// @description Document extraction API: turn PDFs and images into structured records with a vision model.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize services
	normalizer := imaging.NewNormalizer(cfg.Extract.Pdftoppm, cfg.Extract.DPI)
	extractSvc := service.NewExtractService(normalizer, &cfg.Extract)

	// Initialize handlers
	extractH := handler.NewExtractHandler(extractSvc)
	exportH := handler.NewExportHandler()
	healthH := handler.NewHealthHandler(cfg.Extract.Pdftoppm)

	// Setup router
	r := router.Setup(cfg, extractH, exportH, healthH)

	// Extraction requests can run for minutes, so the write timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
