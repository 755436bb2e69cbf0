package warehouse_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

func open(typ, tag string, start, end int) *mdast.Token {
	return mdast.NewToken(typ, tag, mdast.NestingOpen).WithLines(start, end)
}

func closing(typ, tag string) *mdast.Token {
	return mdast.NewToken(typ, tag, mdast.NestingClose)
}

func inline(line int, texts ...string) *mdast.Token {
	tok := mdast.NewToken("inline", "", mdast.NestingSelf).WithLines(line, line+1)
	for i, text := range texts {
		if i > 0 {
			tok.AppendChild(mdast.NewToken("softbreak", "br", mdast.NestingSelf))
		}
		child := mdast.NewToken("text", "", mdast.NestingSelf)
		child.Content = text
		tok.AppendChild(child)
	}
	tok.Content = strings.Join(texts, "\n")
	return tok
}

func heading(level, line int, text string) []*mdast.Token {
	tag := fmt.Sprintf("h%d", level)
	return []*mdast.Token{
		open("heading_open", tag, line, line+1),
		inline(line, text),
		closing("heading_close", tag),
	}
}

func para(line int, text string) []*mdast.Token {
	return []*mdast.Token{
		open("paragraph_open", "p", line, line+1),
		inline(line, text),
		closing("paragraph_close", "p"),
	}
}

func linkPara(line int, href, label string) []*mdast.Token {
	in := mdast.NewToken("inline", "", mdast.NestingSelf).WithLines(line, line+1)
	link := mdast.NewToken("link_open", "a", mdast.NestingOpen)
	link.SetAttr("href", href)
	text := mdast.NewToken("text", "", mdast.NestingSelf)
	text.Content = label
	in.AppendChild(link)
	in.AppendChild(text)
	in.AppendChild(mdast.NewToken("link_close", "a", mdast.NestingClose))
	return []*mdast.Token{
		open("paragraph_open", "p", line, line+1),
		in,
		closing("paragraph_close", "p"),
	}
}

func fence(start, end int, info, content string) *mdast.Token {
	tok := mdast.NewToken("fence", "code", mdast.NestingSelf).WithLines(start, end)
	tok.Info = info
	tok.Content = content
	return tok
}

func concat(groups ...[]*mdast.Token) []*mdast.Token {
	var out []*mdast.Token
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func one(tok *mdast.Token) []*mdast.Token {
	return []*mdast.Token{tok}
}

func build(t *testing.T, tokens []*mdast.Token, lines int) *warehouse.Warehouse {
	t.Helper()
	wh, err := warehouse.New(warehouse.Source{
		Tokens:    mdast.RawTokens(tokens),
		LineCount: lines,
	}, warehouse.Options{})
	require.NoError(t, err)
	return wh
}

// recorder remembers every token it receives.
type recorder struct {
	seen      []warehouse.TokenID
	masks     []warehouse.ContainerMask
	sections  []warehouse.SectionID
	finalized int
}

func (r *recorder) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	r.seen = append(r.seen, ctx.TokenID())
	r.masks = append(r.masks, ctx.ActiveMask())
	r.sections = append(r.sections, ctx.CurrentSection())
	return nil
}

func (r *recorder) Finalize(*warehouse.Context) (warehouse.Output, error) {
	r.finalized++
	return warehouse.Output{Value: len(r.seen)}, nil
}

// faulty fails on the nth token it receives, either by panicking or by
// returning an error.
type faulty struct {
	failAt    int
	panics    bool
	calls     int
	finalized bool
}

func (f *faulty) OnToken(*warehouse.Context, *warehouse.Token) error {
	f.calls++
	if f.calls == f.failAt {
		if f.panics {
			panic("boom")
		}
		return fmt.Errorf("bad token %d", f.calls)
	}
	return nil
}

func (f *faulty) Finalize(*warehouse.Context) (warehouse.Output, error) {
	f.finalized = true
	return warehouse.Output{Value: f.calls}, nil
}

// countingToken is a RawToken that counts accessor calls and can panic on a
// chosen accessor.
type countingToken struct {
	typ      string
	start    int
	end      int
	hasLines bool
	panicOn  string
	kids     []*countingToken
	calls    map[string]int
}

func newCounting(typ string, start, end int) *countingToken {
	return &countingToken{typ: typ, start: start, end: end, hasLines: true, calls: map[string]int{}}
}

func (c *countingToken) hit(name string) {
	c.calls[name]++
	if c.panicOn == name {
		panic("hostile accessor: " + name)
	}
}

func (c *countingToken) TokenType() string { c.hit("TokenType"); return c.typ }
func (c *countingToken) TokenTag() string  { c.hit("TokenTag"); return "" }
func (c *countingToken) LineRange() (int, int, bool) {
	c.hit("LineRange")
	return c.start, c.end, c.hasLines
}
func (c *countingToken) AttrPairs() [][2]string { c.hit("AttrPairs"); return nil }
func (c *countingToken) Text() string           { c.hit("Text"); return "" }
func (c *countingToken) InfoString() string     { c.hit("InfoString"); return "" }
func (c *countingToken) ChildTokens() []warehouse.RawToken {
	c.hit("ChildTokens")
	out := make([]warehouse.RawToken, len(c.kids))
	for i, k := range c.kids {
		out[i] = k
	}
	return out
}

// docFromOps builds a token stream from a list of small opcodes. It can
// produce unbalanced containers, lineless tokens and invalid line ranges.
func docFromOps(ops []byte) ([]*mdast.Token, int) {
	var tokens []*mdast.Token
	line := 0
	for _, op := range ops {
		switch op % 12 {
		case 0, 1, 2:
			tokens = append(tokens, heading(int(op%12)+1, line, fmt.Sprintf("H%d", line))...)
			line += 2
		case 3:
			tokens = append(tokens, para(line, "text")...)
			line += 2
		case 4:
			tokens = append(tokens, open("blockquote_open", "blockquote", line, line+1))
		case 5:
			tokens = append(tokens, closing("blockquote_close", "blockquote"))
		case 6:
			tokens = append(tokens, open("bullet_list_open", "ul", line, line+1))
		case 7:
			tokens = append(tokens, closing("bullet_list_close", "ul"))
		case 8:
			tokens = append(tokens, fence(line, line+3, "go", "x := 1\n"))
			line += 4
		case 9:
			tokens = append(tokens, linkPara(line, "https://example.com", "site")...)
			line += 2
		case 10:
			tokens = append(tokens, mdast.NewToken("hr", "hr", mdast.NestingSelf))
		case 11:
			tokens = append(tokens, open("table_open", "table", line+1, line))
		}
	}
	return tokens, line
}

// checkSectionInvariant verifies the sections tile [0, LineCount).
func checkSectionInvariant(wh *warehouse.Warehouse) error {
	sections := wh.Sections()
	if len(sections) == 0 {
		return fmt.Errorf("no sections")
	}
	if sections[0].Level != 0 || sections[0].StartLine != 0 || sections[0].HeadingID != warehouse.NoToken {
		return fmt.Errorf("section 0 is not the implicit root: %+v", sections[0])
	}
	for i, s := range sections {
		if s.EndLine < s.StartLine {
			return fmt.Errorf("section %d: end %d < start %d", i, s.EndLine, s.StartLine)
		}
		if s.ExtentEnd < s.EndLine {
			return fmt.Errorf("section %d: extent %d < end %d", i, s.ExtentEnd, s.EndLine)
		}
		if i+1 < len(sections) && s.EndLine != sections[i+1].StartLine {
			return fmt.Errorf("section %d ends at %d but %d starts at %d", i, s.EndLine, i+1, sections[i+1].StartLine)
		}
	}
	if last := sections[len(sections)-1]; last.EndLine != wh.LineCount() {
		return fmt.Errorf("last section ends at %d, line count %d", last.EndLine, wh.LineCount())
	}
	return nil
}

// checkPairInvariant verifies open < close and that each close has one open.
func checkPairInvariant(wh *warehouse.Warehouse) error {
	closes := make(map[warehouse.TokenID]warehouse.TokenID)
	for i := range wh.Len() {
		id := warehouse.TokenID(i)
		pair, ok := wh.PairRangeOf(id)
		if !ok {
			continue
		}
		if !wh.Token(id).IsOpen() {
			return fmt.Errorf("token %d has a pair but is not an open", id)
		}
		if pair.OpenEnded() {
			continue
		}
		if pair.Close <= id {
			return fmt.Errorf("pair %d -> %d is not ordered", id, pair.Close)
		}
		if !wh.Token(pair.Close).IsClose() {
			return fmt.Errorf("pair %d -> %d does not end on a close", id, pair.Close)
		}
		if prev, dup := closes[pair.Close]; dup {
			return fmt.Errorf("close %d matched by both %d and %d", pair.Close, prev, id)
		}
		closes[pair.Close] = id
	}
	return nil
}

// linearSection is the reference implementation of SectionContaining.
func linearSection(wh *warehouse.Warehouse, line uint32) (warehouse.SectionID, bool) {
	if line >= wh.LineCount() {
		return 0, false
	}
	found := warehouse.SectionID(0)
	for i, s := range wh.Sections() {
		if s.Contains(line) {
			found = warehouse.SectionID(i)
		}
	}
	return found, true
}
