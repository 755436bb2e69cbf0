package warehouse

import (
	"slices"
	"sort"
)

// Pair is an open token and its matching close.
type Pair struct {
	Open  TokenID
	Close TokenID
}

// OpenEnded reports whether the open was never closed.
func (p Pair) OpenEnded() bool {
	return p.Close == NoToken
}

// Len returns the number of canonical tokens.
func (w *Warehouse) Len() int {
	return len(w.tokens)
}

// LineCount returns the number of source lines.
func (w *Warehouse) LineCount() uint32 {
	return w.lineCount
}

// Token returns the token with the given id, or nil if out of range.
func (w *Warehouse) Token(id TokenID) *Token {
	if int64(id) >= int64(len(w.tokens)) {
		return nil
	}
	return &w.tokens[id]
}

// OfKind returns the ids of all tokens of kind k in ascending order.
func (w *Warehouse) OfKind(k Kind) []TokenID {
	if !k.Valid() {
		return nil
	}
	return slices.Clone(w.idx.byKind[k])
}

// CountKind returns the number of tokens of kind k.
func (w *Warehouse) CountKind(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return len(w.idx.byKind[k])
}

// PairRangeOf returns the pair for an open token. Open-ended opens report
// Close == NoToken. ok is false when open is not an open token.
func (w *Warehouse) PairRangeOf(open TokenID) (Pair, bool) {
	closeID, ok := w.idx.pairs[open]
	if !ok {
		return Pair{}, false
	}
	return Pair{Open: open, Close: closeID}, true
}

// ParentOf returns the innermost enclosing token. ok is false for top-level
// tokens and out-of-range ids.
func (w *Warehouse) ParentOf(id TokenID) (TokenID, bool) {
	if int64(id) >= int64(len(w.idx.parent)) {
		return NoToken, false
	}
	p := w.idx.parent[id]
	return p, p != NoToken
}

// Children returns the direct inline children of id.
func (w *Warehouse) Children(id TokenID) []TokenID {
	tok := w.Token(id)
	if tok == nil || tok.children.Len() == 0 {
		return nil
	}
	var out []TokenID
	for c := tok.children.First; c < tok.children.End; c++ {
		if w.idx.parent[c] == id {
			out = append(out, c)
		}
	}
	return out
}

// InlineText concatenates the text of the text and code_inline descendants of
// id. It is used for link labels and heading text.
func (w *Warehouse) InlineText(id TokenID) string {
	tok := w.Token(id)
	if tok == nil {
		return ""
	}
	var buf []byte
	for c := tok.children.First; c < tok.children.End; c++ {
		switch w.tokens[c].kind {
		case KindText, KindCodeInline:
			buf = append(buf, w.tokens[c].text...)
		case KindSoftbreak, KindHardbreak:
			buf = append(buf, ' ')
		}
	}
	return string(buf)
}

// Sections returns a copy of the section table, sorted by StartLine.
func (w *Warehouse) Sections() []Section {
	return slices.Clone(w.sections)
}

// NumSections returns the number of sections (at least 1).
func (w *Warehouse) NumSections() int {
	return len(w.sections)
}

// Section returns the section with the given id.
func (w *Warehouse) Section(id SectionID) (Section, bool) {
	if int64(id) >= int64(len(w.sections)) {
		return Section{}, false
	}
	return w.sections[id], true
}

// SectionContaining returns the deepest section whose body contains line.
// ok is false only for lines at or past LineCount.
func (w *Warehouse) SectionContaining(line uint32) (SectionID, bool) {
	if line >= w.lineCount {
		return 0, false
	}
	// Last section with StartLine <= line.
	i := sort.Search(len(w.sections), func(i int) bool {
		return w.sections[i].StartLine > line
	})
	return SectionID(i - 1), true
}

// HeadingText returns the heading text of a section ("" for the root).
func (w *Warehouse) HeadingText(id SectionID) string {
	s, ok := w.Section(id)
	if !ok {
		return ""
	}
	return s.HeadingText
}

// Fences returns a copy of the fence inventory in document order.
func (w *Warehouse) Fences() []Fence {
	return slices.Clone(w.fences)
}
