package mdast

import "sort"

// BuildLines constructs line metadata from file content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// Last line (may be empty when content ends with a newline).
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineCount returns the number of source lines as a tokenizer counts them:
// a trailing newline does not open an extra line.
func (s *Stream) LineCount() int {
	n := len(s.Lines)
	if n > 0 && s.Lines[n-1].StartOffset == len(s.Content) {
		n--
	}
	return n
}

// LineOf converts a byte offset to a 0-based line index.
// Offsets past the end map to the last line; negative offsets return -1.
func (s *Stream) LineOf(offset int) int {
	if offset < 0 || len(s.Lines) == 0 {
		return -1
	}
	idx := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].EndOffset > offset
	})
	if idx >= len(s.Lines) {
		idx = len(s.Lines) - 1
	}
	return idx
}

// LineContent returns the content of a 0-based line, excluding the newline.
// Returns nil if the line is out of range.
func (s *Stream) LineContent(line int) []byte {
	if line < 0 || line >= len(s.Lines) {
		return nil
	}
	info := s.Lines[line]
	return s.Content[info.StartOffset:info.NewlineStart]
}
