package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
)

// span is a 0-based, end-exclusive line range. The zero span means unknown.
type span struct {
	start int
	end   int
}

func (s span) known() bool {
	return s.end > s.start
}

func (s span) union(other span) span {
	switch {
	case !other.known():
		return s
	case !s.known():
		return other
	}
	return span{start: min(s.start, other.start), end: max(s.end, other.end)}
}

// walkNodes visits root and its descendants in document order without
// recursion. visit is called on entry and on exit; returning false on entry
// skips the node's children.
func walkNodes(root ast.Node, visit func(n ast.Node, entering bool) bool) {
	node := root
	for {
		if visit(node, true) && node.FirstChild() != nil {
			node = node.FirstChild()
			continue
		}
		for {
			visit(node, false)
			if node == root {
				return
			}
			if next := node.NextSibling(); next != nil {
				node = next
				break
			}
			node = node.Parent()
		}
	}
}

// lineIndex maps byte offsets in the parsed body to lines of the stream.
// The body is the stream content after any front matter.
type lineIndex struct {
	stream *mdast.Stream
	body   []byte
	base   int
}

func (li *lineIndex) line(offset int) int {
	return li.stream.LineOf(offset + li.base)
}

func (li *lineIndex) lineCount() int {
	return li.stream.LineCount()
}

// segmentSpan covers every segment. A segment's Stop points past its newline,
// so the last line is taken from the byte before Stop.
func (li *lineIndex) segmentSpan(segs *text.Segments) span {
	if segs == nil || segs.Len() == 0 {
		return span{}
	}
	return li.lineSpan(segs.At(0)).union(li.lineSpan(segs.At(segs.Len() - 1)))
}

func (li *lineIndex) lineSpan(seg text.Segment) span {
	stop := seg.Stop
	if stop > seg.Start {
		stop--
	}
	return span{start: li.line(seg.Start), end: li.line(stop) + 1}
}

// stripped returns a line without container prefixes (indentation and
// blockquote markers).
func (li *lineIndex) stripped(line int) []byte {
	return bytes.TrimLeft(li.stream.LineContent(line), " \t>")
}

// nextContentLine returns the first non-blank line at or after from.
func (li *lineIndex) nextContentLine(from int) int {
	count := li.lineCount()
	for line := max(from, 0); line < count; line++ {
		if len(bytes.TrimSpace(li.stripped(line))) > 0 {
			return line
		}
	}
	return max(min(from, count-1), 0)
}

// computeSpans derives a line range for every block node, bottom-up. Nodes
// whose range cannot be derived from segments stay unknown and are placed
// by the mapper.
func (li *lineIndex) computeSpans(root ast.Node) map[ast.Node]span {
	spans := make(map[ast.Node]span)

	walkNodes(root, func(n ast.Node, entering bool) bool {
		if n.Type() == ast.TypeInline {
			return false
		}
		if entering {
			return true
		}

		own := li.ownSpan(n)
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			own = own.union(spans[child])
		}
		spans[n] = li.adjust(n, own)
		return false
	})

	return spans
}

func (li *lineIndex) ownSpan(n ast.Node) span {
	switch node := n.(type) {
	case *ast.Document:
		return span{}
	case *ast.FencedCodeBlock:
		return li.fenceSpan(node, -1)
	case *ast.HTMLBlock:
		s := li.segmentSpan(node.Lines())
		if node.HasClosure() {
			s = s.union(li.lineSpan(node.ClosureLine))
		}
		return s
	}
	return li.segmentSpan(n.Lines())
}

func (li *lineIndex) adjust(n ast.Node, s span) span {
	if !s.known() {
		return s
	}
	switch node := n.(type) {
	case *ast.Heading:
		if li.isSetext(node) {
			s.end++
		}
	case *east.Table:
		// The delimiter row carries no cells.
		s.end = max(s.end, s.start+2)
	}
	s.end = min(s.end, max(li.lineCount(), 1))
	return s
}

// isSetext reports whether a heading uses an underline. ATX headings have a
// '#' marker before their text on the same line.
func (li *lineIndex) isSetext(h *ast.Heading) bool {
	if h.Lines().Len() == 0 {
		return false
	}
	pos := h.Lines().At(0).Start - 1
	for pos >= 0 && (li.body[pos] == ' ' || li.body[pos] == '\t') {
		pos--
	}
	return pos < 0 || li.body[pos] != '#'
}

// fenceSpan computes the range of a fenced code block including both fence
// lines. open is the opening line when already known, or -1.
func (li *lineIndex) fenceSpan(node *ast.FencedCodeBlock, open int) span {
	content := li.segmentSpan(node.Lines())
	if open < 0 {
		switch {
		case node.Info != nil:
			open = li.line(node.Info.Segment.Start)
		case content.known():
			open = content.start - 1
		default:
			return span{}
		}
	}

	last := open
	if content.known() {
		last = max(last, content.end-1)
	}
	end := last + 1
	if li.closesFence(open, last+1) {
		end++
	}
	return span{start: open, end: end}
}

// closesFence reports whether line closes the fence opened on line open.
func (li *lineIndex) closesFence(open, line int) bool {
	if line >= li.lineCount() {
		return false
	}
	marker, length := fenceMarker(li.stream.LineContent(open))
	candidate := li.stripped(line)
	run := 0
	for run < len(candidate) && candidate[run] == marker {
		run++
	}
	return run >= length && len(bytes.TrimSpace(candidate[run:])) == 0
}

// fenceMarker extracts the fence character and length from an opening fence
// line. List markers may precede the fence, so the first '`' or '~' run wins.
func fenceMarker(line []byte) (byte, int) {
	pos := bytes.IndexAny(line, "`~")
	if pos < 0 {
		return '`', 3
	}
	marker := line[pos]
	length := 0
	for pos < len(line) && line[pos] == marker {
		length++
		pos++
	}
	return marker, max(length, 3)
}
