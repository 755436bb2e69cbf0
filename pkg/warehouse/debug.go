package warehouse

import (
	"fmt"
	"io"
	"strings"
)

// DumpSections writes one line per section: id, level, body range, extent
// and heading text, indented by level.
func (w *Warehouse) DumpSections(out io.Writer) error {
	for i, s := range w.sections {
		indent := strings.Repeat("  ", int(s.Level))
		title := s.HeadingText
		if s.HeadingID == NoToken {
			title = "(root)"
		}
		_, err := fmt.Fprintf(out, "%s#%d h%d lines [%d,%d) extent %d %q\n",
			indent, i, s.Level, s.StartLine, s.EndLine, s.ExtentEnd, title)
		if err != nil {
			return fmt.Errorf("dump sections: %w", err)
		}
	}
	return nil
}

// DumpTokens writes one line per token with its id, kind, lines, parent and
// pair. Intended for debugging tokenizer adapters.
func (w *Warehouse) DumpTokens(out io.Writer) error {
	for i := range w.tokens {
		tok := &w.tokens[i]
		id := TokenID(i)

		parent := "-"
		if p, ok := w.ParentOf(id); ok {
			parent = fmt.Sprint(p)
		}
		pair := ""
		if p, ok := w.PairRangeOf(id); ok {
			if p.OpenEnded() {
				pair = " close=open-ended"
			} else {
				pair = fmt.Sprintf(" close=%d", p.Close)
			}
		}

		_, err := fmt.Fprintf(out, "%d %s lines [%d,%d) parent=%s%s\n",
			id, tok.typ, tok.lineStart, tok.lineEnd, parent, pair)
		if err != nil {
			return fmt.Errorf("dump tokens: %w", err)
		}
	}
	return nil
}
