// Package extract runs the warehouse pipeline over Markdown documents:
// tokenize, index, dispatch the configured collectors, and gather results.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/gomdwarehouse/internal/logging"
	"github.com/yaklabco/gomdwarehouse/pkg/collectors"
	"github.com/yaklabco/gomdwarehouse/pkg/config"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
	"github.com/yaklabco/gomdwarehouse/pkg/parser/goldmark"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// ErrParseFailure indicates the tokenizer rejected a document.
var ErrParseFailure = errors.New("parse failure")

// Tokenizer turns Markdown content into a raw token stream.
type Tokenizer interface {
	Parse(ctx context.Context, path string, content []byte) (*mdast.Stream, error)
}

// Engine extracts collector results from single documents. It holds no
// per-document state and is safe for concurrent use.
type Engine struct {
	tokenizers map[config.Flavor]Tokenizer
	collectors *collectors.Registry
}

// NewEngine returns an Engine with goldmark tokenizers for every flavor and
// the default collector set.
func NewEngine() *Engine {
	return &Engine{
		tokenizers: map[config.Flavor]Tokenizer{
			config.FlavorCommonMark: goldmark.New(goldmark.FlavorCommonMark),
			config.FlavorGFM:        goldmark.New(goldmark.FlavorGFM),
		},
		collectors: collectors.Default,
	}
}

// WithTokenizer replaces the tokenizer used for flavor.
func (e *Engine) WithTokenizer(flavor config.Flavor, tok Tokenizer) *Engine {
	e.tokenizers[flavor] = tok
	return e
}

// WithCollectors replaces the collector set.
func (e *Engine) WithCollectors(reg *collectors.Registry) *Engine {
	e.collectors = reg
	return e
}

// DocumentResult is everything extracted from one document.
type DocumentResult struct {
	Path   string
	Digest string
	Size   int64
	Lines  int
	Tokens int

	Sections []warehouse.Section

	// Results maps collector names to their outcomes.
	Results map[string]warehouse.Result

	// Warnings are warehouse construction warnings (malformed tokens).
	Warnings []string
}

// Failed returns the names of collectors that failed, in name order.
func (d *DocumentResult) Failed() []string {
	var names []string
	for _, name := range sortedKeys(d.Results) {
		if d.Results[name].Failed() {
			names = append(names, name)
		}
	}
	return names
}

// UnsafeURLs counts links and images that failed validation.
func (d *DocumentResult) UnsafeURLs() int {
	return collectors.UnsafeURLs(d.Results)
}

// Build tokenizes content and builds its warehouse without dispatching.
func (e *Engine) Build(ctx context.Context, path string, content []byte, cfg *config.Config) (*warehouse.Warehouse, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	opts := limits(cfg)

	// Reject oversized input before the tokenizer sees it.
	if maxBytes := effectiveMaxBytes(opts); int64(len(content)) > maxBytes {
		return nil, &warehouse.LimitError{Limit: "bytes", Max: maxBytes, Actual: int64(len(content))}
	}

	tok, ok := e.tokenizers[cfg.Flavor]
	if !ok {
		tok = e.tokenizers[config.FlavorGFM]
	}

	stream, err := tok.Parse(ctx, path, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("tokenize %s: %w", path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
	}

	wh, err := warehouse.New(warehouse.Source{
		Tokens:    mdast.RawTokens(stream.Tokens),
		Size:      int64(stream.Size()),
		LineCount: stream.LineCount(),
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return wh, nil
}

// ExtractContent runs the enabled collectors over content. Collector
// failures are reported on the result, not as an error; the error is
// reserved for limits, tokenizer failures and cancellation.
func (e *Engine) ExtractContent(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*DocumentResult, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	ctx = logging.WithDocument(ctx, path)
	logger := logging.FromContext(ctx)

	wh, err := e.Build(ctx, path, content, cfg)
	if err != nil {
		if errors.Is(err, warehouse.ErrLimitExceeded) {
			logger.Warn("document rejected", logging.FieldError, err)
		}
		return nil, err
	}

	reg, err := e.collectors.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build collectors: %w", err)
	}

	results, err := wh.CollectAll(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", path, err)
	}

	for _, name := range sortedKeys(results) {
		res := results[name]
		switch {
		case res.Failed():
			logger.Warn("collector failed", logging.FieldCollector, name, logging.FieldError, res.Err)
		case res.Truncated:
			logger.Info("collector truncated", logging.FieldCollector, name)
		}
	}

	warnings := wh.Warnings()
	if len(warnings) > 0 {
		logger.Debug("malformed tokens", logging.FieldWarnings, len(warnings))
	}

	return &DocumentResult{
		Path:     path,
		Digest:   fsutil.DigestOf(content),
		Size:     int64(len(content)),
		Lines:    int(wh.LineCount()),
		Tokens:   wh.Len(),
		Sections: wh.Sections(),
		Results:  results,
		Warnings: warnings,
	}, nil
}

// ExtractFile reads path within the byte limit and extracts it.
func (e *Engine) ExtractFile(ctx context.Context, path string, cfg *config.Config) (*DocumentResult, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	content, _, err := fsutil.ReadFile(ctx, path, effectiveMaxBytes(limits(cfg)))
	if err != nil {
		var sizeErr *fsutil.SizeError
		if errors.As(err, &sizeErr) {
			limitErr := &warehouse.LimitError{Limit: "bytes", Max: sizeErr.Max, Actual: sizeErr.Size}
			logging.FromContext(logging.WithDocument(ctx, path)).Warn("document rejected", logging.FieldError, limitErr)
			return nil, fmt.Errorf("%s: %w", path, limitErr)
		}
		return nil, err
	}

	return e.ExtractContent(ctx, path, content, cfg)
}

func limits(cfg *config.Config) warehouse.Options {
	return warehouse.Options{
		MaxTokens: cfg.Limits.MaxTokens,
		MaxBytes:  cfg.Limits.MaxBytes,
		MaxDepth:  cfg.Limits.MaxDepth,
	}
}

func effectiveMaxBytes(opts warehouse.Options) int64 {
	if opts.MaxBytes > 0 {
		return opts.MaxBytes
	}
	return warehouse.DefaultMaxBytes
}
