// Package goldmark tokenizes Markdown with the goldmark library and converts
// the resulting AST into the markdown-it shaped token stream the warehouse
// consumes.
package goldmark

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Option configures a Parser.
type Option func(*Parser)

// WithFrontMatter controls whether a leading YAML block delimited by "---"
// lines becomes a front_matter token. Enabled by default.
func WithFrontMatter(enabled bool) Option {
	return func(p *Parser) {
		p.frontMatter = enabled
	}
}

// Parser tokenizes Markdown. It is safe for concurrent use.
type Parser struct {
	flavor      string
	frontMatter bool
	md          goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string, opts ...Option) *Parser {
	f := flavorOrDefault(flavor)
	p := &Parser{
		flavor:      f,
		frontMatter: true,
		md:          newGoldmarkInstance(f),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse tokenizes content into a Stream. The content is copied.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*mdast.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	stream := mdast.NewStream(path, copyContent(content))

	var front *mdast.Token
	base := 0
	if p.frontMatter {
		front, base = splitFrontMatter(stream)
	}
	body := stream.Content[base:]

	doc := p.md.Parser().Parse(text.NewReader(body))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	tokens := newMapper(stream, body, base).mapDocument(doc)
	if front != nil {
		tokens = append([]*mdast.Token{front}, tokens...)
	}
	stream.Tokens = tokens

	return stream, nil
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}

func copyContent(content []byte) []byte {
	if content == nil {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
