package warehouse

import (
	"math"
	"slices"
	"sort"
)

// RawToken is the tokenizer-facing input. Implementations may be untrusted:
// every method is called at most once per token, during New, and any panic
// turns the token into a KindMalformed placeholder.
type RawToken interface {
	// TokenType returns the markdown-it type name ("heading_open", "inline", ...).
	TokenType() string

	// TokenTag returns the HTML tag ("h2", "a", "code").
	TokenTag() string

	// LineRange returns the 0-based, end-exclusive source line range.
	// ok is false when the tokenizer has no range for the token.
	LineRange() (start, end int, ok bool)

	// AttrPairs returns name/value attribute pairs.
	AttrPairs() [][2]string

	// Text returns the content payload.
	Text() string

	// InfoString returns the fence info string.
	InfoString() string

	// ChildTokens returns inline children.
	ChildTokens() []RawToken
}

// TokenID indexes a token in a Warehouse. Ids follow pre-order: a token's
// descendants come right after it.
type TokenID uint32

// NoToken is the sentinel for "no token" (no parent, open-ended pair).
const NoToken TokenID = math.MaxUint32

// Attr is a canonical attribute pair.
type Attr struct {
	Name  string
	Value string
}

// ChildRange is the half-open id range [First, End) of a token's descendants.
type ChildRange struct {
	First TokenID
	End   TokenID
}

// Len returns the number of descendants.
func (r ChildRange) Len() int {
	return int(r.End - r.First)
}

// Contains reports whether id is a descendant.
func (r ChildRange) Contains(id TokenID) bool {
	return id >= r.First && id < r.End
}

// Token is an immutable, canonical token. All fields were copied out of the
// raw token during construction.
type Token struct {
	kind      Kind
	nesting   int8
	malformed bool
	lineless  bool
	family    uint16

	typ   string
	tag   string
	attrs []Attr
	text  string
	info  string

	lineStart uint32
	lineEnd   uint32
	children  ChildRange
}

// Kind returns the token kind.
func (t *Token) Kind() Kind { return t.kind }

// Type returns the raw type name as reported by the tokenizer.
func (t *Token) Type() string { return t.typ }

// Tag returns the HTML tag.
func (t *Token) Tag() string { return t.tag }

// Lines returns the 0-based, end-exclusive line range.
func (t *Token) Lines() (start, end uint32) { return t.lineStart, t.lineEnd }

// Line returns the 0-based start line.
func (t *Token) Line() uint32 { return t.lineStart }

// Text returns the content payload.
func (t *Token) Text() string { return t.text }

// Info returns the fence info string.
func (t *Token) Info() string { return t.info }

// Children returns the descendant id range.
func (t *Token) Children() ChildRange { return t.children }

// Malformed reports whether the token is a placeholder for unreadable input.
func (t *Token) Malformed() bool { return t.malformed }

// IsOpen reports whether the token opens a container.
func (t *Token) IsOpen() bool { return t.nesting > 0 }

// IsClose reports whether the token closes a container.
func (t *Token) IsClose() bool { return t.nesting < 0 }

// Attr returns the value of the named attribute.
func (t *Token) Attr(name string) (string, bool) {
	i := sort.Search(len(t.attrs), func(i int) bool { return t.attrs[i].Name >= name })
	if i < len(t.attrs) && t.attrs[i].Name == name {
		return t.attrs[i].Value, true
	}
	return "", false
}

// Attrs returns a copy of the attributes, sorted by name.
func (t *Token) Attrs() []Attr {
	return slices.Clone(t.attrs)
}

// HeadingLevel returns 1-6 for heading tokens with an hN tag, 0 otherwise.
func (t *Token) HeadingLevel() uint8 {
	if t.kind != KindHeadingOpen && t.kind != KindHeadingClose {
		return 0
	}
	return headingLevel(t.tag)
}

func headingLevel(tag string) uint8 {
	if len(tag) != 2 || tag[0] != 'h' || tag[1] < '1' || tag[1] > '6' {
		return 0
	}
	return tag[1] - '0'
}
