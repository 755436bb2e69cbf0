package warehouse

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// rawFields holds everything read from one RawToken.
type rawFields struct {
	typ      string
	tag      string
	start    int
	end      int
	hasLines bool
	attrs    [][2]string
	text     string
	info     string
	kids     []RawToken
}

// readRaw invokes each accessor exactly once. A panic stops reading; the
// remaining accessors are never called.
func readRaw(raw RawToken) (fields rawFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: accessor panicked: %v", ErrMalformedToken, r)
		}
	}()

	if raw == nil {
		return fields, fmt.Errorf("%w: nil token", ErrMalformedToken)
	}

	fields.typ = raw.TokenType()
	fields.tag = raw.TokenTag()
	fields.start, fields.end, fields.hasLines = raw.LineRange()
	fields.attrs = raw.AttrPairs()
	fields.text = raw.Text()
	fields.info = raw.InfoString()
	fields.kids = raw.ChildTokens()

	return fields, nil
}

type canonFrame struct {
	raws   []RawToken
	next   int
	parent TokenID
	depth  int
}

// canonicalizer flattens raw tokens into a pre-order arena.
type canonicalizer struct {
	maxTokens int
	maxDepth  int

	tokens   []Token
	families map[string]uint16
	warnings []string

	prevEnd uint32
	maxLine uint32
}

func newCanonicalizer(opts Options, sizeHint int) *canonicalizer {
	maxTokens := opts.MaxTokens
	if int64(maxTokens) > int64(NoToken)-1 {
		maxTokens = int(int64(NoToken) - 1)
	}
	return &canonicalizer{
		maxTokens: maxTokens,
		maxDepth:  opts.MaxDepth,
		tokens:    make([]Token, 0, min(sizeHint, maxTokens)),
		families:  make(map[string]uint16),
	}
}

// run canonicalizes src. Children are laid out right after their parent,
// so every ChildRange is contiguous.
func (c *canonicalizer) run(src []RawToken) error {
	stack := []canonFrame{{raws: src, parent: NoToken}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.raws) {
			if top.parent != NoToken {
				c.tokens[top.parent].children.End = TokenID(len(c.tokens))
			}
			stack = stack[:len(stack)-1]
			continue
		}

		raw := top.raws[top.next]
		top.next++
		parent, depth := top.parent, top.depth

		if err := c.reserve(1); err != nil {
			return err
		}

		id := TokenID(len(c.tokens))
		tok, kids := c.canonicalize(id, raw, parent)
		tok.children = ChildRange{First: id + 1, End: id + 1}
		c.append(tok)

		if len(kids) == 0 {
			continue
		}

		if depth+1 > c.maxDepth {
			if err := c.reserve(1); err != nil {
				return err
			}
			c.warnf("token %d: %d children dropped, nesting deeper than %d", id, len(kids), c.maxDepth)
			ph := c.placeholder()
			ph.children = ChildRange{First: id + 2, End: id + 2}
			c.append(ph)
			c.tokens[id].children.End = id + 2
			continue
		}

		stack = append(stack, canonFrame{raws: kids, parent: id, depth: depth + 1})
	}

	return nil
}

func (c *canonicalizer) reserve(n int) error {
	if len(c.tokens)+n > c.maxTokens {
		return &LimitError{
			Limit:  "tokens",
			Max:    int64(c.maxTokens),
			Actual: int64(len(c.tokens) + n),
		}
	}
	return nil
}

func (c *canonicalizer) append(tok Token) {
	c.tokens = append(c.tokens, tok)
	c.prevEnd = tok.lineEnd
	c.maxLine = max(c.maxLine, tok.lineEnd)
}

func (c *canonicalizer) canonicalize(id TokenID, raw RawToken, parent TokenID) (Token, []RawToken) {
	fields, err := readRaw(raw)
	if err != nil {
		c.warnf("token %d: %v", id, err)
		return c.placeholder(), nil
	}

	tok := Token{
		kind:    KindOf(fields.typ),
		nesting: nestingOf(fields.typ),
		typ:     fields.typ,
		tag:     fields.tag,
		text:    fields.text,
		info:    fields.info,
	}

	switch {
	case fields.hasLines:
		if fields.start < 0 || fields.end < fields.start || uint64(fields.end) >= uint64(NoToken) {
			c.warnf("token %d: %v: invalid line range [%d, %d)", id, ErrMalformedToken, fields.start, fields.end)
			return c.placeholder(), nil
		}
		tok.lineStart = uint32(fields.start)
		tok.lineEnd = uint32(fields.end)
	case parent != NoToken:
		tok.lineStart = c.tokens[parent].lineStart
		tok.lineEnd = c.tokens[parent].lineEnd
	default:
		tok.lineStart = c.prevEnd
		tok.lineEnd = c.prevEnd
		tok.lineless = true
	}

	if stem := pairStem(fields.typ); stem != "" {
		tok.family = c.family(stem)
	}

	if len(fields.attrs) > 0 {
		tok.attrs = make([]Attr, len(fields.attrs))
		for i, pair := range fields.attrs {
			tok.attrs[i] = Attr{Name: pair[0], Value: pair[1]}
		}
		slices.SortStableFunc(tok.attrs, func(a, b Attr) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}

	return tok, fields.kids
}

// family interns an open/close stem. 0 is reserved for "not paired".
func (c *canonicalizer) family(stem string) uint16 {
	if f, ok := c.families[stem]; ok {
		return f
	}
	if len(c.families) >= math.MaxUint16-1 {
		return 0
	}
	f := uint16(len(c.families) + 1)
	c.families[stem] = f
	return f
}

func (c *canonicalizer) placeholder() Token {
	return Token{
		kind:      KindMalformed,
		malformed: true,
		typ:       kindNames[KindMalformed],
		lineStart: c.prevEnd,
		lineEnd:   c.prevEnd,
	}
}

func (c *canonicalizer) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}
