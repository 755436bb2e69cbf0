package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type (
	loggerKey   struct{}
	documentKey struct{}
)

// FromContext returns the logger carried by ctx, or the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// document is the scope stored by WithDocument; base is the logger before
// the path was attached.
type document struct {
	path string
	base *log.Logger
}

// WithDocument scopes the context logger to one Markdown document: every
// entry logged through the returned context carries the document path.
// Scoping the same path twice is a no-op, and a new path replaces the old one.
func WithDocument(ctx context.Context, path string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	base := FromContext(ctx)
	if doc, ok := ctx.Value(documentKey{}).(document); ok {
		if doc.path == path {
			return ctx
		}
		base = doc.base
	}
	ctx = WithLogger(ctx, base.With(FieldPath, path))
	return context.WithValue(ctx, documentKey{}, document{path: path, base: base})
}

// DocumentPath returns the document the context is scoped to.
func DocumentPath(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	doc, ok := ctx.Value(documentKey{}).(document)
	return doc.path, ok
}
