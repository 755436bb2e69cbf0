package goldmark

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
)

// splitFrontMatter detects a YAML front matter block at the top of the
// stream. It returns the front_matter token and the byte offset where the
// Markdown body starts, or nil and 0 when there is none. A block that is not
// a YAML mapping is left to the Markdown parser.
func splitFrontMatter(stream *mdast.Stream) (*mdast.Token, int) {
	count := stream.LineCount()
	if count < 2 || !isDelimiter(stream.LineContent(0), "---") {
		return nil, 0
	}

	for line := 1; line < count; line++ {
		content := stream.LineContent(line)
		if !isDelimiter(content, "---") && !isDelimiter(content, "...") {
			continue
		}

		raw := stream.Content[stream.Lines[1].StartOffset:stream.Lines[line].StartOffset]
		var meta map[string]any
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return nil, 0
		}

		tok := mdast.NewToken("front_matter", "", mdast.NestingSelf).WithLines(0, line+1)
		tok.Block = true
		tok.Markup = "---"
		tok.Content = string(raw)
		return tok, stream.Lines[line].EndOffset
	}

	return nil, 0
}

func isDelimiter(line []byte, marker string) bool {
	return string(bytes.TrimRight(line, " \t")) == marker
}
