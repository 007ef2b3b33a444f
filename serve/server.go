package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mirage "github.com/Paranoid-AF/mirage"
	"github.com/Paranoid-AF/mirage/engine"
)

// Searcher resolves a query to validated search results.
type Searcher interface {
	Search(ctx context.Context, query string) (*mirage.SearchResults, error)
}

// Server exposes a Searcher over HTTP.
type Server struct {
	listener net.Listener
	http     *http.Server
	searcher Searcher
}

// NewServer creates a server bound to addr backed by an engine built from cfg.
func NewServer(addr string, cfg *mirage.Config) (*Server, error) {
	return NewServerWithSearcher(addr, engine.NewFromConfig(cfg))
}

// NewServerWithSearcher creates a server bound to addr with a custom Searcher.
func NewServerWithSearcher(addr string, searcher Searcher) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		searcher: searcher,
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until the server is closed.
func (s *Server) Serve() error {
	err := s.http.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops accepting connections and waits up to five seconds for
// in-flight searches to finish.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.Warn("shutdown", "error", err)
		s.http.Close()
	}
	s.listener.Close()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/search", s.handleSearch)
	r.GET("/schema", handleSchema)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, mirage.ErrorResponse{Error: &mirage.ErrorBody{
			Code:    "not_found",
			Message: "no route for " + c.Request.URL.Path,
		}})
	})
	return r
}

func (s *Server) handleSearch(c *gin.Context) {
	query, ok := c.GetQuery("q")
	if !ok {
		writeError(c, mirage.Errorf(mirage.EINVALID, "query parameter q is required"))
		return
	}

	result, err := s.searcher.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, mirage.SearchResponse{Query: query, Result: result})
}

func handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, engine.Schema())
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Warn("search failed", "status", status, "error", err)
	}
	c.JSON(status, mirage.ErrorResponse{Error: mirage.NewErrorBody(err)})
}

// statusFor maps an error code to the HTTP status reported to clients.
func statusFor(err error) int {
	switch mirage.ErrorCode(err) {
	case mirage.EINVALID:
		return http.StatusBadRequest
	case mirage.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	case mirage.EMALFORMED, mirage.ESCHEMA:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
