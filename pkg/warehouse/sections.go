package warehouse

import "strings"

// SectionID indexes Warehouse.Sections. Section 0 is the implicit level-0
// section that precedes the first heading.
type SectionID uint32

// Section is a heading-delimited region of the document.
type Section struct {
	// Level is the heading level (1-6), or 0 for the implicit root section.
	Level uint8

	// StartLine is the heading line (0 for the root section).
	StartLine uint32

	// EndLine ends the section's own body: the next heading of any level, or
	// the line count. [StartLine, EndLine) ranges never overlap.
	EndLine uint32

	// ExtentEnd is where the section closes including its subsections: the
	// next heading of the same or a higher level, or the line count.
	ExtentEnd uint32

	// HeadingText is the text of the heading's inline child.
	HeadingText string

	// HeadingID is the heading_open token, or NoToken for the root section.
	HeadingID TokenID
}

// Contains reports whether line falls in the section's own body.
func (s Section) Contains(line uint32) bool {
	return line >= s.StartLine && line < s.EndLine
}

// Fence is an inventory entry for a fenced code block.
type Fence struct {
	TokenID   TokenID
	StartLine uint32
	EndLine   uint32

	// Language is the first word of the info string; empty means none.
	Language string
}

type sectionFrame struct {
	level uint8
	id    SectionID
}

// buildSections runs the O(H) heading stack over the heading_open tokens and
// collects the fence inventory. Headings whose line precedes an earlier
// heading are clamped so sections stay sorted.
func buildSections(tokens []Token, idx *indexes, lineCount uint32) ([]Section, []Fence) {
	headings := idx.byKind[KindHeadingOpen]
	sections := make([]Section, 1, len(headings)+1)
	sections[0] = Section{HeadingID: NoToken}

	stack := make([]sectionFrame, 1, 8)
	stack[0] = sectionFrame{level: 0, id: 0}

	for _, id := range headings {
		tok := &tokens[id]
		level := headingLevel(tok.tag)
		if level == 0 {
			continue
		}

		prev := &sections[len(sections)-1]
		line := max(min(tok.lineStart, lineCount), prev.StartLine)

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			sections[stack[len(stack)-1].id].ExtentEnd = line
			stack = stack[:len(stack)-1]
		}
		sections[len(sections)-1].EndLine = line

		sid := SectionID(len(sections))
		sections = append(sections, Section{
			Level:       level,
			StartLine:   line,
			HeadingText: headingText(tokens, idx, id),
			HeadingID:   id,
		})
		stack = append(stack, sectionFrame{level: level, id: sid})
	}

	sections[len(sections)-1].EndLine = lineCount
	for _, frame := range stack {
		sections[frame.id].ExtentEnd = lineCount
	}

	return sections, buildFences(tokens, idx)
}

// headingText returns the content of the inline child of a heading_open.
func headingText(tokens []Token, idx *indexes, open TokenID) string {
	next := open + 1
	if int(next) < len(tokens) && tokens[next].kind == KindInline && idx.parent[next] == open {
		return strings.TrimSpace(tokens[next].text)
	}
	return ""
}

func buildFences(tokens []Token, idx *indexes) []Fence {
	ids := idx.byKind[KindFence]
	if len(ids) == 0 {
		return nil
	}
	fences := make([]Fence, len(ids))
	for i, id := range ids {
		tok := &tokens[id]
		fences[i] = Fence{
			TokenID:   id,
			StartLine: tok.lineStart,
			EndLine:   tok.lineEnd,
			Language:  FenceLanguage(tok.info),
		}
	}
	return fences
}

// FenceLanguage extracts the language from a fence info string:
// "go", "go title=x", "{.python}" and "{python}" all work.
func FenceLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	lang := strings.TrimPrefix(fields[0], "{")
	lang = strings.TrimSuffix(lang, "}")
	lang = strings.TrimPrefix(lang, ".")
	return lang
}
