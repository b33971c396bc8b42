// Package http provides the gin HTTP server with graceful shutdown.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/middleware"
	options "github.com/ariel1441/ai-rag-project-sub000/pkg/options/server/http"
	apierrors "github.com/ariel1441/ai-rag-project-sub000/pkg/utils/errors"
)

// Server wraps a gin engine in an http.Server with graceful shutdown.
type Server struct {
	opts   *options.Options
	engine *gin.Engine
	server *http.Server
}

// NewServer creates an HTTP server. The engine carries recovery,
// request-id and access-log middleware, plus CORS and a per-request
// deadline when the options ask for them; handlers are registered on
// Engine() before Start.
func NewServer(opts *options.Options) *Server {
	if opts == nil {
		opts = options.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Recovery first so it wraps everything, then request-id so the
	// access log can include it.
	chain := []gin.HandlerFunc{
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	}
	if len(opts.CORSAllowedOrigins) > 0 {
		chain = append(chain, middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSAllowedOrigins,
		}))
	}
	if opts.RequestTimeout > 0 {
		chain = append(chain, middleware.Timeout(opts.RequestTimeout))
	}
	middleware.Chain(engine, chain...)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    apierrors.ErrNotFound.Code,
			"message": apierrors.ErrNotFound.Message(""),
		})
	})

	return &Server{
		opts:   opts,
		engine: engine,
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine returns the underlying gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins listening. It returns once the listener is up; serve
// errors after that are reported on the returned channel by Wait.
func (s *Server) Start(ctx context.Context) <-chan error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.opts.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// Stop shuts the server down gracefully, honoring the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logger.Infow("HTTP server shutting down", "addr", s.opts.Addr)
	return s.server.Shutdown(ctx)
}
