// Package langdetect names the language of fenced code blocks. A language
// given in the fence info string wins; otherwise go-enry guesses one from
// the code itself.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Method records how a language was determined.
type Method string

// Detection methods, from most to least reliable.
const (
	MethodInfo       Method = "info"
	MethodShebang    Method = "shebang"
	MethodPattern    Method = "pattern"
	MethodClassifier Method = "classifier"
	MethodNone       Method = "none"
)

// Unknown is the language reported when nothing could be determined.
const Unknown = "text"

// Hint is a language name with its provenance.
type Hint struct {
	Language string `json:"language"`
	Method   Method `json:"method"`
}

// Guessed reports whether the language was inferred from code rather than
// declared in the info string.
func (h Hint) Guessed() bool {
	return h.Method != MethodInfo && h.Method != MethodNone
}

// ForFence returns the language of a fenced block. A declared language is
// canonicalized; an empty one is detected from code.
func ForFence(declared string, code []byte) Hint {
	if declared != "" {
		return Hint{Language: Canonical(declared), Method: MethodInfo}
	}
	return Detect(code)
}

// Canonical maps a fence tag or alias ("py", "golang", "sh") to the
// lowercase name go-enry uses. Unknown tags are lowercased.
func Canonical(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if lang, ok := enry.GetLanguageByAlias(tag); ok {
		return normalize(lang)
	}
	return strings.ToLower(tag)
}

//nolint:gochecknoglobals // Static candidate list.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// Detect guesses the language of code.
func Detect(content []byte) Hint {
	if len(bytes.TrimSpace(content)) == 0 {
		return Hint{Language: Unknown, Method: MethodNone}
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return Hint{Language: normalize(lang), Method: MethodShebang}
	}

	if lang := detectByPattern(content); lang != "" {
		return Hint{Language: lang, Method: MethodPattern}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return Hint{Language: normalize(lang), Method: MethodClassifier}
	}

	return Hint{Language: Unknown, Method: MethodNone}
}

// pattern is a cheap, highly indicative check tried before the classifier.
type pattern struct {
	lang  string
	match func(content, trimmed []byte, text string) bool
}

//nolint:gochecknoglobals // Ordered from most to least specific.
var patterns = []pattern{
	{"go", func(_, trimmed []byte, _ string) bool {
		return bytes.HasPrefix(trimmed, []byte("package "))
	}},
	{"python", func(_, _ []byte, text string) bool {
		if strings.Contains(text, "def ") && strings.Contains(text, "):") {
			return true
		}
		if strings.Contains(text, "__name__") || strings.Contains(text, "__main__") {
			return true
		}
		return strings.Contains(text, "import ") && !strings.Contains(text, "import (") &&
			(strings.Contains(text, "from ") || strings.HasPrefix(strings.TrimSpace(text), "import "))
	}},
	{"html", func(_, trimmed []byte, _ string) bool {
		lower := bytes.ToLower(trimmed)
		for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
			if bytes.Contains(lower, []byte(marker)) {
				return true
			}
		}
		return false
	}},
	{"json", func(_, trimmed []byte, _ string) bool {
		return (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
			bytes.Contains(trimmed, []byte(`"`))
	}},
	{"dockerfile", func(content, trimmed []byte, _ string) bool {
		return bytes.HasPrefix(trimmed, []byte("FROM ")) ||
			(bytes.Contains(content, []byte("\nFROM ")) && bytes.Contains(content, []byte("\nRUN "))) ||
			(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY ")))
	}},
	{"sql", func(_, _ []byte, text string) bool {
		upper := strings.ToUpper(strings.TrimSpace(text))
		for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, verb) {
				return true
			}
		}
		return false
	}},
	{"rust", func(_, _ []byte, text string) bool {
		return strings.Contains(text, "fn main()") ||
			strings.Contains(text, "println!") ||
			strings.Contains(text, "let mut ")
	}},
	{"javascript", func(_, _ []byte, text string) bool {
		return strings.Contains(text, "=>") ||
			strings.Contains(text, "const ") ||
			strings.Contains(text, "let ") ||
			strings.Contains(text, "console.log")
	}},
	{"yaml", func(content, _ []byte, _ string) bool {
		return yamlKeys(content) >= 2
	}},
}

func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	text := string(content)
	for _, p := range patterns {
		if p.match(content, trimmed, text) {
			return p.lang
		}
	}
	return ""
}

// yamlKeys counts "key: value" lines and root list items.
func yamlKeys(content []byte) int {
	count := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "({") &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	return count
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
