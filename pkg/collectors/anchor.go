package collectors

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// slugger generates GitHub-compatible heading anchors, suffixing repeats
// with -1, -2 and so on.
type slugger struct {
	// occurrences counts repeats per base; a key's presence means the
	// anchor is taken.
	occurrences map[string]int
}

func newSlugger() *slugger {
	return &slugger{occurrences: make(map[string]int)}
}

// slug returns a unique anchor for text.
func (s *slugger) slug(text string) string {
	base := anchorBase(text)
	id := base
	for {
		if _, taken := s.occurrences[id]; !taken {
			break
		}
		s.occurrences[base]++
		id = base + "-" + strconv.Itoa(s.occurrences[base])
	}
	s.occurrences[id] = 0
	return id
}

// anchorBase lowercases NFC text, drops punctuation other than '-' and '_',
// and turns each space into a hyphen. Runs of hyphens are kept.
func anchorBase(text string) string {
	text = strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))

	var buf strings.Builder
	buf.Grow(len(text))
	for _, ch := range text {
		switch {
		case unicode.IsLetter(ch), unicode.IsNumber(ch), unicode.IsMark(ch):
			buf.WriteRune(ch)
		case ch == '-', ch == '_':
			buf.WriteRune(ch)
		case ch == ' ':
			buf.WriteByte('-')
		}
	}
	return buf.String()
}
