package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okekechris/docuchat/internal/api/handlers"
	"github.com/okekechris/docuchat/internal/config"
	"github.com/okekechris/docuchat/internal/core"
	"github.com/okekechris/docuchat/internal/core/filestore"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, files *filestore.Store, store core.VectorStore, queue handlers.TaskQueue, deleter handlers.Deleter, llm core.LLMProvider) *Server {
	docHandler := handlers.NewDocumentHandler(files, store, queue, deleter, cfg.MaxFileBytes)
	searchHandler := handlers.NewSearchHandler(store)
	chatHandler := handlers.NewChatHandler(store, llm)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/upload", docHandler.Upload)
	r.Get("/task_status/{id}", docHandler.TaskStatus)
	r.Post("/search", searchHandler.Search)
	r.Get("/documents", docHandler.List)
	r.Delete("/documents/{filename}", docHandler.Delete)
	r.Post("/chat", chatHandler.Chat)
	r.Get("/status", handlers.Status)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
