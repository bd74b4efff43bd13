package app

import (
	"context"
	"fmt"
	"log"

	"github.com/okekechris/docuchat/internal/config"
	"github.com/okekechris/docuchat/internal/core/extract"
	"github.com/okekechris/docuchat/internal/core/filestore"
	"github.com/okekechris/docuchat/internal/core/ingest"
	"github.com/okekechris/docuchat/internal/core/llm"
	"github.com/okekechris/docuchat/internal/core/vectorstore"
)

// App owns every long-lived component. Construction is an explicit startup
// phase: the vector store must be reachable (within its retry budget) before
// the server accepts any traffic.
type App struct {
	Store      *vectorstore.Store
	Files      *filestore.Store
	Pipeline   *ingest.Pipeline
	Dispatcher *ingest.Dispatcher
	Server     *Server

	embedder  *llm.GeminiEmbedder
	captioner *llm.GeminiCaptioner
	generator *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	files, err := filestore.New(cfg.UploadDir, cfg.TextractedDir)
	if err != nil {
		return nil, fmt.Errorf("prepare directories: %w", err)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	store, err := vectorstore.New(ctx, vectorstore.Config{
		DatabaseURL:    cfg.DatabaseURL,
		EmbedDim:       cfg.EmbedDim,
		ConnectRetries: cfg.ConnectRetries,
		ConnectBackoff: cfg.ConnectBackoff,
	}, embedder)
	if err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	log.Println("Vector store initialized and ready.")

	captioner, err := llm.NewGeminiCaptioner(ctx, cfg.AIAPIKey, cfg.CaptionModel, cfg.CaptionPerSec)
	if err != nil {
		return nil, fmt.Errorf("init captioner: %w", err)
	}

	generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.ChatTimeout)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	ocr := extract.NewTesseract(cfg.OCRLanguage)
	pdf := extract.NewPDFExtractor(ocr, captioner, files.ImagesDir(), cfg.MaxImageDim)
	converter := extract.NewDocconvConverter()
	chunker := ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)

	pipeline := ingest.NewPipeline(store, pdf, converter, chunker, files.TextractedDir(), cfg.MaxFileBytes, cfg.Workers)

	dispatcher := ingest.NewDispatcher(pipeline)
	dispatcher.Start(ctx, cfg.Workers)

	if cfg.WatchUploads {
		watcher, err := ingest.NewWatcher(dispatcher)
		if err != nil {
			return nil, fmt.Errorf("init watcher: %w", err)
		}
		if err := watcher.Watch(ctx, files.UploadDir()); err != nil {
			return nil, fmt.Errorf("watch uploads: %w", err)
		}
		log.Printf("Watching %s for new documents.", files.UploadDir())
	}

	server := NewServer(cfg, files, store, dispatcher, pipeline, generator)

	return &App{
		Store:      store,
		Files:      files,
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
		Server:     server,
		embedder:   embedder,
		captioner:  captioner,
		generator:  generator,
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.captioner != nil {
		_ = a.captioner.Close()
	}
	if a.generator != nil {
		_ = a.generator.Close()
	}
}
