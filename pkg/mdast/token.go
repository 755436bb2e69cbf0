package mdast

import "github.com/yaklabco/gomdwarehouse/pkg/warehouse"

// Nesting describes how a token affects block nesting.
type Nesting int8

// Nesting levels, matching the markdown-it token model.
const (
	NestingClose Nesting = -1
	NestingSelf  Nesting = 0
	NestingOpen  Nesting = 1
)

// Attr is a single attribute pair on a token (e.g., href, src, title).
type Attr struct {
	Name  string
	Value string
}

// LineRange is a 0-based, end-exclusive range of source lines.
type LineRange struct {
	Start int
	End   int
}

// Token is a markdown-it shaped token produced by a tokenizer.
//
// Block tokens form a flat sequence where *_open and *_close tokens delimit
// containers. Inline content hangs off "inline" tokens as Children.
type Token struct {
	// Type is the token type name (e.g., "heading_open", "inline", "fence").
	Type string

	// Tag is the HTML tag associated with the token (e.g., "h2", "a").
	Tag string

	// Nesting is 1 for openers, -1 for closers and 0 for self-contained tokens.
	Nesting Nesting

	// Map is the source line range, or nil when the tokenizer has none
	// (closing tokens and most inline tokens).
	Map *LineRange

	// Attrs holds attribute pairs in source order.
	Attrs []Attr

	// Content is the raw text payload (inline source, code, HTML, alt text).
	Content string

	// Info is the fence info string.
	Info string

	// Markup is the marker text (e.g., "##", "```", "*").
	Markup string

	// Children holds inline child tokens.
	Children []*Token

	// Block is true for block-level tokens.
	Block bool
}

// NewToken creates a token with the given type, tag and nesting.
func NewToken(typ, tag string, nesting Nesting) *Token {
	return &Token{Type: typ, Tag: tag, Nesting: nesting}
}

// WithLines sets the line map and returns the token for chaining.
func (t *Token) WithLines(start, end int) *Token {
	t.Map = &LineRange{Start: start, End: end}
	return t
}

// SetAttr sets an attribute, replacing an existing value with the same name.
func (t *Token) SetAttr(name, value string) {
	for i := range t.Attrs {
		if t.Attrs[i].Name == name {
			t.Attrs[i].Value = value
			return
		}
	}
	t.Attrs = append(t.Attrs, Attr{Name: name, Value: value})
}

// AttrGet returns the value of the named attribute.
func (t *Token) AttrGet(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AppendChild appends an inline child token.
func (t *Token) AppendChild(child *Token) {
	t.Children = append(t.Children, child)
}

// The methods below implement warehouse.RawToken.

// TokenType returns the token type name.
func (t *Token) TokenType() string { return t.Type }

// TokenTag returns the HTML tag.
func (t *Token) TokenTag() string { return t.Tag }

// LineRange returns the source line range, if known.
func (t *Token) LineRange() (int, int, bool) {
	if t.Map == nil {
		return 0, 0, false
	}
	return t.Map.Start, t.Map.End, true
}

// AttrPairs returns the attributes as name/value pairs.
func (t *Token) AttrPairs() [][2]string {
	if len(t.Attrs) == 0 {
		return nil
	}
	pairs := make([][2]string, len(t.Attrs))
	for i, a := range t.Attrs {
		pairs[i] = [2]string{a.Name, a.Value}
	}
	return pairs
}

// Text returns the content payload.
func (t *Token) Text() string { return t.Content }

// InfoString returns the fence info string.
func (t *Token) InfoString() string { return t.Info }

// ChildTokens returns the inline children.
func (t *Token) ChildTokens() []warehouse.RawToken {
	if len(t.Children) == 0 {
		return nil
	}
	out := make([]warehouse.RawToken, len(t.Children))
	for i, c := range t.Children {
		out[i] = c
	}
	return out
}

// RawTokens converts a token slice to the warehouse input form.
func RawTokens(tokens []*Token) []warehouse.RawToken {
	out := make([]warehouse.RawToken, len(tokens))
	for i, t := range tokens {
		out[i] = t
	}
	return out
}
