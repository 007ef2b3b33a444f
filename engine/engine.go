// Package engine turns a search query into a validated, cached
// mirage.SearchResults by asking a local completion service to fill in a
// schema-constrained document.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	mirage "github.com/Paranoid-AF/mirage"
	"github.com/Paranoid-AF/mirage/metrics"
)

// Engine resolves queries through the cache and the completion service.
// It is safe for concurrent use.
type Engine struct {
	client       *Client
	cache        *Cache
	seed         int64
	customPrompt string // loaded custom prompt template (empty = use default)
	logger       *slog.Logger

	// flight joins concurrent misses for the same query into one call.
	flight singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClient sets the completion service client.
func WithClient(c *Client) Option {
	return func(e *Engine) { e.client = c }
}

// WithCache sets the result cache, letting several engines share one.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithSeed sets the sampling seed sent with every request.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithPrompt sets a custom prompt template. Empty means the built-in one.
func WithPrompt(tmpl string) Option {
	return func(e *Engine) { e.customPrompt = tmpl }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine talking to mirage.DefaultEndpoint with seed 0 and an
// empty cache, then applies opts.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = NewClient(mirage.DefaultEndpoint, 0)
	}
	if e.cache == nil {
		e.cache = NewCache()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// NewFromConfig creates an engine from cfg, picking up the custom prompt
// template from mirage.PromptPath() if one exists.
func NewFromConfig(cfg *mirage.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = mirage.DefaultConfig()
	}

	base := []Option{
		WithClient(NewClient(mirage.ResolveCompletionEndpoint(cfg), cfg.Completion.Timeout)),
		WithSeed(cfg.Completion.Seed),
	}
	if prompt := loadCustomPrompt(); prompt != "" {
		base = append(base, WithPrompt(prompt))
	} else {
		slog.Debug("no custom prompt, using built-in default")
	}
	return New(append(base, opts...)...)
}

// loadCustomPrompt loads a custom prompt template.
// Returns empty string if no custom prompt exists.
func loadCustomPrompt() string {
	promptPath := mirage.PromptPath()
	data, err := os.ReadFile(promptPath)
	if err != nil {
		return ""
	}
	slog.Info("loaded custom prompt", "path", promptPath)
	return string(data)
}

// Cache returns the engine's result cache.
func (e *Engine) Cache() *Cache { return e.cache }

// Search returns the results for query. Cached results are returned without
// contacting the completion service. On a miss the service is called exactly
// once, even if several goroutines ask for the same query at the same time;
// they all receive the outcome of that one call. Failures are never cached.
//
// Cancelling ctx makes this caller stop waiting; an upstream call already
// in flight runs to completion and its result is still cached.
//
// The returned value is the caller's own copy.
func (e *Engine) Search(ctx context.Context, query string) (*mirage.SearchResults, error) {
	if result, ok := e.cache.Lookup(query); ok {
		metrics.CacheHit()
		e.logger.Debug("cache hit", "query", query)
		return result, nil
	}
	metrics.CacheMiss()

	// The shared call outlives any one caller: a caller that gives up stops
	// waiting, but the others still receive the result.
	ch := e.flight.DoChan(query, func() (any, error) {
		return e.resolve(context.WithoutCancel(ctx), query)
	})
	select {
	case <-ctx.Done():
		return nil, mirage.WrapError(mirage.EUNAVAILABLE, ctx.Err(), "search abandoned")
	case res := <-ch:
		if res.Shared {
			metrics.SharedSearches.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mirage.SearchResults).Clone(), nil
	}
}

// resolve performs one uncached round trip to the completion service.
func (e *Engine) resolve(ctx context.Context, query string) (*mirage.SearchResults, error) {
	// A call for the same query may have finished between the caller's
	// lookup and joining the flight.
	if result, ok := e.cache.Lookup(query); ok {
		return result, nil
	}

	schema := Schema()
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		if pretty, err := json.MarshalIndent(schema, "", "  "); err == nil {
			e.logger.Debug("schema", "schema", string(pretty))
		}
	}

	req, err := e.BuildRequest(query, schema)
	if err != nil {
		return nil, err
	}

	begin := time.Now()
	content, err := e.client.Complete(ctx, req)
	metrics.CompletionDuration.Observe(time.Since(begin).Seconds())
	if err != nil {
		metrics.CompletionRequests.WithLabelValues(mirage.ErrorCode(err)).Inc()
		e.logger.Error("completion failed", "query", query, "endpoint", e.client.Endpoint(), "error", err)
		return nil, err
	}

	e.logger.Debug("result", "query", query, "content", prettyJSON(content))

	result, err := decodeResults(content, schema)
	if err != nil {
		metrics.CompletionRequests.WithLabelValues(mirage.ErrorCode(err)).Inc()
		e.logger.Error("invalid completion", "query", query, "error", err)
		return nil, err
	}
	metrics.CompletionRequests.WithLabelValues(metrics.OutcomeOK).Inc()

	e.cache.Store(query, result)
	e.logger.Debug("cached", "query", query, "results", len(result.Results), "duration", time.Since(begin))

	return result, nil
}
