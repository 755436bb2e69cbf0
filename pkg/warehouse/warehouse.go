// Package warehouse indexes a Markdown token stream in a single pass and
// dispatches each token only to the collectors interested in it.
//
// Construction canonicalizes the tokenizer's raw tokens exactly once, then
// builds the type, pair and parent indexes, the section table and the fence
// inventory. A Warehouse is immutable afterwards and safe for concurrent
// queries. Dispatch (CollectAll) is single-threaded and deterministic.
//
// Tokenizer accessors may be attacker-controlled. They are never called after
// New returns, and a panicking accessor only produces a malformed placeholder.
// A tokenizer that can corrupt memory or loop forever needs process isolation.
package warehouse

import (
	"slices"
)

// Default limits.
const (
	DefaultMaxTokens = 1_000_000
	DefaultMaxBytes  = 16 << 20
	DefaultMaxDepth  = 10_000
)

// Options bounds the resources a single document may use.
// Zero values select the defaults.
type Options struct {
	// MaxTokens caps canonical tokens, inline descendants included.
	MaxTokens int

	// MaxBytes caps Source.Size.
	MaxBytes int64

	// MaxDepth caps Children nesting. Deeper subtrees become malformed
	// placeholders.
	MaxDepth int
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Source is a tokenized document.
type Source struct {
	// Tokens is the top-level raw token sequence.
	Tokens []RawToken

	// Size is the document size in bytes, checked against MaxBytes.
	Size int64

	// LineCount is the number of source lines. When smaller than the largest
	// token line, the latter is used.
	LineCount int
}

// Warehouse holds the canonical tokens and indexes of one document.
type Warehouse struct {
	tokens    []Token
	idx       indexes
	sections  []Section
	fences    []Fence
	lineCount uint32
	warnings  []string
}

// New canonicalizes src and builds all indexes. It fails only when a
// resource limit is exceeded, with a *LimitError.
func New(src Source, opts Options) (*Warehouse, error) {
	opts = opts.withDefaults()

	if src.Size > opts.MaxBytes {
		return nil, &LimitError{Limit: "bytes", Max: opts.MaxBytes, Actual: src.Size}
	}
	if len(src.Tokens) > opts.MaxTokens {
		return nil, &LimitError{Limit: "tokens", Max: int64(opts.MaxTokens), Actual: int64(len(src.Tokens))}
	}

	canon := newCanonicalizer(opts, len(src.Tokens))
	if err := canon.run(src.Tokens); err != nil {
		return nil, err
	}

	lineCount := canon.maxLine
	if src.LineCount > 0 && uint64(src.LineCount) > uint64(lineCount) && uint64(src.LineCount) < uint64(NoToken) {
		lineCount = uint32(src.LineCount)
	}

	w := &Warehouse{
		tokens:    canon.tokens,
		lineCount: lineCount,
		warnings:  canon.warnings,
	}
	w.idx = buildIndexes(w.tokens, len(canon.families))
	w.sections, w.fences = buildSections(w.tokens, &w.idx, w.lineCount)

	return w, nil
}

// Warnings returns construction warnings (malformed tokens, dropped subtrees).
func (w *Warehouse) Warnings() []string {
	return slices.Clone(w.warnings)
}
