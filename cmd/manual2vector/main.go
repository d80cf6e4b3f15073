// manual2vector turns technical service-manual PDFs into a structured,
// queryable knowledge base.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driven/objectstore/minio"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driven/ollama"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driven/storage/sqlite"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driven/video/youtube"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driving/cli"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/chunker"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/config"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driving"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/services"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/extraction"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/extractors"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Setup(buildPipeline)

	if err := cli.Execute(ctx, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildPipeline wires the full pipeline from configuration. It is
// called once by the first command that needs it; the returned closer
// releases storage and OCR resources.
func buildPipeline() (driving.DocumentPipeline, func() error, error) {
	cfg, err := config.Load(cli.ConfigPath())
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	aliases, err := extractors.ManufacturerAliases(cfg.RulesDir)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("load manufacturer aliases: %w", err)
	}

	var (
		renderer driven.PageRenderer
		ocr      driven.OCREngine
	)
	if cfg.Extraction.OCREnabled {
		renderer = extraction.NewFitzRenderer()
		ocr, err = extraction.NewTesseractOCR(cfg.Extraction.OCRLanguages)
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("initialise OCR: %w", err)
		}
	}

	stream := extraction.NewStreamBackend()
	engine := extraction.NewEngine(cfg, extraction.NewNativeBackend(), stream, renderer, ocr)

	enrich, err := buildEnrichment(cfg, stream)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	processor := services.NewDocumentProcessor(
		cfg,
		engine,
		services.NewManufacturerDetector(aliases, cfg.Detection),
		extractors.NewErrorCodeExtractor(cfg),
		extractors.NewPartExtractor(cfg),
		extractors.NewProductExtractor(cfg),
		extractors.NewVersionExtractor(cfg),
		extractors.LinkScanner{},
		chunker.New(
			chunker.WithSize(cfg.Chunking.Size),
			chunker.WithOverlap(cfg.Chunking.Overlap),
			chunker.WithMinLength(cfg.Chunking.MinLength),
			chunker.WithMinFragment(cfg.Chunking.MinFragment),
		),
		store,
		enrich,
	)

	closer := func() error {
		if ocr != nil {
			_ = ocr.Close()
		}
		return store.Close()
	}
	return processor, closer, nil
}

// buildEnrichment assembles the optional collaborators. Anything not
// configured stays nil and its pipeline stage is skipped.
func buildEnrichment(cfg *config.Config, images driven.ImageExtractor) (services.Enrichment, error) {
	var enrich services.Enrichment

	if cfg.Services.Ollama.Enabled {
		enrich.Embedder = ollama.NewEmbeddingService(ollama.EmbeddingConfig{
			BaseURL: cfg.Services.Ollama.BaseURL,
			Model:   cfg.Services.Ollama.EmbeddingModel,
		})
		enrich.Vision = ollama.NewVisionService(ollama.VisionConfig{
			BaseURL: cfg.Services.Ollama.BaseURL,
			Model:   cfg.Services.Ollama.VisionModel,
		})
		enrich.LLM = ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: cfg.Services.Ollama.BaseURL,
			Model:   cfg.Services.Ollama.LLMModel,
		})
	}

	if cfg.Services.Minio.Endpoint != "" {
		store, err := minio.New(context.Background(), cfg.Services.Minio)
		if err != nil {
			return enrich, fmt.Errorf("connect object store: %w", err)
		}
		enrich.Store = store
		enrich.Images = images
	}

	if cfg.Services.Video.APIKey != "" {
		video, err := youtube.New(context.Background(), cfg.Services.Video)
		if err != nil {
			return enrich, fmt.Errorf("connect video service: %w", err)
		}
		enrich.Video = video
	}

	return enrich, nil
}
