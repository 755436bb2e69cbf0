package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
)

// mapper converts a goldmark AST into a markdown-it shaped token sequence.
type mapper struct {
	lines  *lineIndex
	spans  map[ast.Node]span
	cursor int
	tokens []*mdast.Token
}

// newMapper creates a mapper for a body parsed out of stream. base is the
// byte offset of body inside the stream content.
func newMapper(stream *mdast.Stream, body []byte, base int) *mapper {
	return &mapper{
		lines:  &lineIndex{stream: stream, body: body, base: base},
		cursor: stream.LineOf(base),
	}
}

// mapDocument converts a goldmark document into block tokens.
func (m *mapper) mapDocument(doc ast.Node) []*mdast.Token {
	m.spans = m.lines.computeSpans(doc)
	m.cursor = max(m.cursor, 0)

	walkNodes(doc, func(n ast.Node, entering bool) bool {
		if n == doc {
			return entering
		}
		if n.Type() == ast.TypeInline {
			return false
		}
		if entering {
			return m.enter(n)
		}
		m.exit(n)
		return false
	})

	return m.tokens
}

// place returns the node's line range. Nodes without one are put on the
// next non-blank line after the cursor.
func (m *mapper) place(n ast.Node) span {
	s := m.spans[n]
	if !s.known() {
		line := m.lines.nextContentLine(m.cursor)
		s = span{start: line, end: line + 1}
		if fence, ok := n.(*ast.FencedCodeBlock); ok {
			s = m.lines.fenceSpan(fence, line)
		}
		m.spans[n] = s
	}
	m.cursor = max(m.cursor, s.start)
	return s
}

func (m *mapper) emit(typ, tag string, nesting mdast.Nesting, s *span) *mdast.Token {
	tok := mdast.NewToken(typ, tag, nesting)
	tok.Block = true
	if s != nil {
		tok.WithLines(s.start, s.end)
	}
	m.tokens = append(m.tokens, tok)
	return tok
}

// enter emits the tokens for a block node and reports whether its children
// are walked as blocks.
func (m *mapper) enter(n ast.Node) bool {
	s := m.place(n)

	switch node := n.(type) {
	case *ast.Heading:
		tag := "h" + strconv.Itoa(node.Level)
		open := m.emit("heading_open", tag, mdast.NestingOpen, &s)
		open.Markup = strings.Repeat("#", node.Level)
		if m.lines.isSetext(node) {
			open.Markup = "="
			if node.Level == 2 {
				open.Markup = "-"
			}
		}
		m.inline(node, s, m.rawText(node.Lines()))
		m.emit("heading_close", tag, mdast.NestingClose, nil).Markup = open.Markup
		return false

	case *ast.Paragraph, *ast.TextBlock:
		m.emit("paragraph_open", "p", mdast.NestingOpen, &s)
		m.inline(node, s, m.rawText(node.Lines()))
		m.emit("paragraph_close", "p", mdast.NestingClose, nil)
		return false

	case *ast.List:
		typ, tag := "bullet_list_open", "ul"
		if node.IsOrdered() {
			typ, tag = "ordered_list_open", "ol"
		}
		open := m.emit(typ, tag, mdast.NestingOpen, &s)
		open.Markup = string(node.Marker)
		if node.IsOrdered() && node.Start != 1 {
			open.SetAttr("start", strconv.Itoa(node.Start))
		}
		return true

	case *ast.ListItem:
		open := m.emit("list_item_open", "li", mdast.NestingOpen, &s)
		if list, ok := node.Parent().(*ast.List); ok {
			open.Markup = string(list.Marker)
		}
		return true

	case *ast.Blockquote:
		m.emit("blockquote_open", "blockquote", mdast.NestingOpen, &s).Markup = ">"
		return true

	case *ast.FencedCodeBlock:
		tok := m.emit("fence", "code", mdast.NestingSelf, &s)
		marker, length := fenceMarker(m.lines.stream.LineContent(s.start))
		tok.Markup = strings.Repeat(string(marker), length)
		if node.Info != nil {
			tok.Info = strings.TrimSpace(string(node.Info.Segment.Value(m.lines.body)))
		}
		tok.Content = m.codeText(node.Lines())
		return false

	case *ast.CodeBlock:
		m.emit("code_block", "code", mdast.NestingSelf, &s).Content = m.codeText(node.Lines())
		return false

	case *ast.HTMLBlock:
		content := m.codeText(node.Lines())
		if node.HasClosure() {
			content += string(node.ClosureLine.Value(m.lines.body))
		}
		m.emit("html_block", "", mdast.NestingSelf, &s).Content = content
		return false

	case *ast.ThematicBreak:
		m.emit("hr", "hr", mdast.NestingSelf, &s)
		return false

	case *east.Table:
		m.table(node, s)
		return false
	}

	return true
}

func (m *mapper) exit(n ast.Node) {
	switch node := n.(type) {
	case *ast.List:
		typ, tag := "bullet_list_close", "ul"
		if node.IsOrdered() {
			typ, tag = "ordered_list_close", "ol"
		}
		m.emit(typ, tag, mdast.NestingClose, nil).Markup = string(node.Marker)
	case *ast.ListItem:
		m.emit("list_item_close", "li", mdast.NestingClose, nil)
	case *ast.Blockquote:
		m.emit("blockquote_close", "blockquote", mdast.NestingClose, nil).Markup = ">"
	}
	m.cursor = max(m.cursor, m.spans[n].end)
}

// table emits a GFM table. Body rows are wrapped in tbody only when present.
func (m *mapper) table(node *east.Table, s span) {
	m.emit("table_open", "table", mdast.NestingOpen, &s)

	rowLine := s.start
	inBody := false
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		header := row.Kind() == east.KindTableHeader
		rowSpan := m.spans[row]
		if !rowSpan.known() {
			rowSpan = span{start: rowLine, end: rowLine + 1}
		}
		rowLine = rowSpan.end
		if header {
			rowLine++
			m.emit("thead_open", "thead", mdast.NestingOpen, &rowSpan)
		} else if !inBody {
			inBody = true
			m.emit("tbody_open", "tbody", mdast.NestingOpen, &span{start: rowSpan.start, end: max(s.end, rowSpan.end)})
		}

		m.emit("tr_open", "tr", mdast.NestingOpen, &rowSpan)
		tag := "td"
		if header {
			tag = "th"
		}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			open := m.emit(tag+"_open", tag, mdast.NestingOpen, &rowSpan)
			if tc, ok := cell.(*east.TableCell); ok && tc.Alignment != east.AlignNone {
				open.SetAttr("style", "text-align:"+tc.Alignment.String())
			}
			content := strings.TrimSpace(m.rawText(cell.Lines()))
			if content == "" {
				content = m.plainText(cell)
			}
			m.inline(cell, rowSpan, content)
			m.emit(tag+"_close", tag, mdast.NestingClose, nil)
		}
		m.emit("tr_close", "tr", mdast.NestingClose, nil)

		if header {
			m.emit("thead_close", "thead", mdast.NestingClose, nil)
		}
	}

	if inBody {
		m.emit("tbody_close", "tbody", mdast.NestingClose, nil)
	}
	m.emit("table_close", "table", mdast.NestingClose, nil)
}

// inline emits an inline token holding the converted children of n.
func (m *mapper) inline(n ast.Node, s span, content string) {
	tok := mdast.NewToken("inline", "", mdast.NestingSelf).WithLines(s.start, s.end)
	tok.Content = content
	tok.Children = m.inlineChildren(n)
	m.tokens = append(m.tokens, tok)
}

// inlineChildren flattens the inline subtree of parent the way markdown-it
// does: emphasis and links become open/close pairs among their siblings,
// while an image keeps its alt text as nested children.
func (m *mapper) inlineChildren(parent ast.Node) []*mdast.Token {
	var root []*mdast.Token
	targets := []*[]*mdast.Token{&root}
	var images []*mdast.Token

	push := func(tok *mdast.Token) {
		target := targets[len(targets)-1]
		*target = append(*target, tok)
	}
	pair := func(typ, tag, markup string, nesting mdast.Nesting) *mdast.Token {
		tok := mdast.NewToken(typ, tag, nesting)
		tok.Markup = markup
		push(tok)
		return tok
	}

	walkNodes(parent, func(n ast.Node, entering bool) bool {
		if n == parent {
			return entering
		}

		switch node := n.(type) {
		case *ast.Text:
			if entering {
				m.pushText(node, push)
			}
			return false

		case *ast.String:
			if entering && len(node.Value) > 0 {
				push(textToken(string(node.Value)))
			}
			return false

		case *ast.CodeSpan:
			if entering {
				tok := pair("code_inline", "code", "`", mdast.NestingSelf)
				tok.Content = m.plainText(node)
			}
			return false

		case *ast.Emphasis:
			typ, tag, markup := "em", "em", "*"
			if node.Level >= 2 {
				typ, tag, markup = "strong", "strong", "**"
			}
			if entering {
				pair(typ+"_open", tag, markup, mdast.NestingOpen)
			} else {
				pair(typ+"_close", tag, markup, mdast.NestingClose)
			}
			return true

		case *east.Strikethrough:
			if entering {
				pair("s_open", "s", "~~", mdast.NestingOpen)
			} else {
				pair("s_close", "s", "~~", mdast.NestingClose)
			}
			return true

		case *ast.Link:
			if entering {
				open := pair("link_open", "a", "", mdast.NestingOpen)
				open.SetAttr("href", string(node.Destination))
				if len(node.Title) > 0 {
					open.SetAttr("title", string(node.Title))
				}
			} else {
				pair("link_close", "a", "", mdast.NestingClose)
			}
			return true

		case *ast.AutoLink:
			if entering {
				href := string(node.URL(m.lines.body))
				if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
					href = "mailto:" + href
				}
				open := pair("link_open", "a", "autolink", mdast.NestingOpen)
				open.SetAttr("href", href)
				open.Info = "auto"
				push(textToken(string(node.Label(m.lines.body))))
				pair("link_close", "a", "autolink", mdast.NestingClose).Info = "auto"
			}
			return false

		case *ast.Image:
			if entering {
				img := pair("image", "img", "", mdast.NestingSelf)
				img.SetAttr("src", string(node.Destination))
				img.SetAttr("alt", "")
				if len(node.Title) > 0 {
					img.SetAttr("title", string(node.Title))
				}
				images = append(images, img)
				targets = append(targets, &img.Children)
				return true
			}
			img := images[len(images)-1]
			images = images[:len(images)-1]
			targets = targets[:len(targets)-1]
			img.Content = joinText(img.Children)
			img.SetAttr("alt", img.Content)
			return false

		case *ast.RawHTML:
			if entering {
				var buf bytes.Buffer
				for i := range node.Segments.Len() {
					seg := node.Segments.At(i)
					buf.Write(seg.Value(m.lines.body))
				}
				pair("html_inline", "", "", mdast.NestingSelf).Content = buf.String()
			}
			return false

		case *east.TaskCheckBox:
			if entering {
				box := `<input type="checkbox" disabled>`
				if node.IsChecked {
					box = `<input type="checkbox" checked disabled>`
				}
				pair("html_inline", "", "", mdast.NestingSelf).Content = box
			}
			return false
		}

		return true
	})

	return root
}

func textToken(content string) *mdast.Token {
	tok := mdast.NewToken("text", "", mdast.NestingSelf)
	tok.Content = content
	return tok
}

// pushText emits a text token followed by a break token when the text ends
// a line.
func (m *mapper) pushText(node *ast.Text, push func(*mdast.Token)) {
	value := string(node.Segment.Value(m.lines.body))
	if node.SoftLineBreak() || node.HardLineBreak() {
		value = strings.TrimRight(value, " \t")
	}
	if value != "" {
		push(textToken(value))
	}
	switch {
	case node.HardLineBreak():
		push(mdast.NewToken("hardbreak", "br", mdast.NestingSelf))
	case node.SoftLineBreak():
		push(mdast.NewToken("softbreak", "br", mdast.NestingSelf))
	}
}

// plainText concatenates the text below n, with line breaks as spaces.
func (m *mapper) plainText(n ast.Node) string {
	var buf strings.Builder
	walkNodes(n, func(child ast.Node, entering bool) bool {
		if !entering {
			return false
		}
		switch node := child.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(m.lines.body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
			return false
		case *ast.String:
			buf.Write(node.Value)
			return false
		}
		return true
	})
	return strings.TrimSpace(buf.String())
}

// rawText joins source lines, trimmed, the way markdown-it fills the content
// of an inline token.
func (m *mapper) rawText(segs *text.Segments) string {
	lines := make([]string, 0, segs.Len())
	for i := range segs.Len() {
		seg := segs.At(i)
		lines = append(lines, strings.TrimSpace(string(seg.Value(m.lines.body))))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// codeText joins source lines verbatim.
func (m *mapper) codeText(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := range segs.Len() {
		seg := segs.At(i)
		buf.Write(seg.Value(m.lines.body))
	}
	return buf.String()
}

func joinText(tokens []*mdast.Token) string {
	var buf strings.Builder
	for _, tok := range tokens {
		switch tok.Type {
		case "text", "code_inline":
			buf.WriteString(tok.Content)
		case "softbreak", "hardbreak":
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}
