// Package mdast provides the raw Markdown token model consumed by the
// warehouse. It defines:
// - Stream: a tokenized document with its content and line index
// - Token: a markdown-it shaped token (block sequence plus inline children)
// - iterative walking helpers that never recurse on token depth
package mdast

// Stream is a tokenized view of a Markdown file.
type Stream struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines contains metadata for each line in the file.
	Lines []LineInfo

	// Tokens is the top-level block token sequence.
	Tokens []*Token
}

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// NewStream creates a Stream from content with its line index built.
// Tokens are filled in by a tokenizer.
func NewStream(path string, content []byte) *Stream {
	return &Stream{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// Size returns the content length in bytes.
func (s *Stream) Size() int {
	return len(s.Content)
}
