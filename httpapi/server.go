package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/poiesic/docchat/conversation"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/ingestion"
)

// DefaultShutdownTimeout bounds how long Run waits for in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// Asker answers a conversation. *conversation.Service implements it.
type Asker interface {
	Ask(ctx context.Context, turns []core.Message) (<-chan conversation.Event, error)
}

// Ingester ingests uploaded files and URLs. *ingestion.Pipeline implements it.
type Ingester interface {
	IngestFiles(ctx context.Context, paths []string, opts *ingestion.IngestOptions) (*ingestion.Report, error)
	IngestURL(ctx context.Context, url string, opts *ingestion.IngestOptions) (*ingestion.Report, error)
}

// Eraser deletes every record of a namespace. *index.Eraser implements it.
type Eraser interface {
	Erase(ctx context.Context, namespace string) (string, error)
}

// EraserFunc adapts a function to Eraser.
type EraserFunc func(ctx context.Context, namespace string) (string, error)

// Erase calls f.
func (f EraserFunc) Erase(ctx context.Context, namespace string) (string, error) {
	return f(ctx, namespace)
}

// Option configures a Server.
type Option func(*Server) error

// WithNamespace sets the namespace used for ingestion and deletion.
// Default is the empty namespace.
func WithNamespace(namespace string) Option {
	return func(s *Server) error {
		s.namespace = namespace
		return nil
	}
}

// WithShutdownTimeout sets how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) error {
		s.shutdownTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// Server routes HTTP requests to the conversation and ingestion pipelines.
type Server struct {
	asker           Asker
	ingester        Ingester
	eraser          Eraser
	namespace       string
	shutdownTimeout time.Duration
	engine          *gin.Engine
	logger          *slog.Logger
}

// NewServer creates a Server and registers its routes.
func NewServer(asker Asker, ingester Ingester, eraser Eraser, opts ...Option) (*Server, error) {
	if asker == nil {
		return nil, ErrAskerRequired
	}
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if eraser == nil {
		return nil, ErrEraserRequired
	}

	s := &Server{
		asker:           asker,
		ingester:        ingester,
		eraser:          eraser,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "httpapi")

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger), cors.New(corsConfig()))
	api := engine.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/ingest", s.handleIngest)
		api.POST("/ingest-url", s.handleIngestURL)
		api.POST("/delete-documents", s.handleDelete)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, MessageResponse{Message: "not found"})
	})
	s.engine = engine
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
