package collectors

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// htmlSnippetLimit caps the stored fragment text, in bytes.
const htmlSnippetLimit = 200

// HTMLFragment is raw HTML found in the document.
type HTMLFragment struct {
	Block     bool                `json:"block"`
	Tag       string              `json:"tag,omitempty"`
	StartLine int                 `json:"start_line"`
	EndLine   int                 `json:"end_line"`
	Snippet   string              `json:"snippet"`
	Section   warehouse.SectionID `json:"section"`
}

var htmlTagPattern = regexp.MustCompile(`^<\s*/?\s*([A-Za-z][A-Za-z0-9-]*)`)

// HTMLSpec describes the html collector. It is off by default.
func HTMLSpec() Spec {
	return Spec{
		Name:        "html",
		Description: "Raw HTML blocks and inline tags with their line numbers.",
		Interests: []warehouse.Kind{
			warehouse.KindInline,
			warehouse.KindSoftbreak,
			warehouse.KindHardbreak,
			warehouse.KindHTMLBlock,
			warehouse.KindHTMLInline,
		},
		IgnoreInside:     warehouse.MaskNone,
		EnabledByDefault: false,
		New: func(s Settings) warehouse.Collector {
			return &htmlCollector{fragments: newList[HTMLFragment](s.MaxItems)}
		},
	}
}

type htmlCollector struct {
	fragments list[HTMLFragment]
	breaks    int
}

func (c *htmlCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	switch tok.Kind() {
	case warehouse.KindInline:
		c.breaks = 0
		return nil
	case warehouse.KindSoftbreak, warehouse.KindHardbreak:
		c.breaks++
		return nil
	}

	text := strings.TrimSpace(tok.Text())
	frag := HTMLFragment{
		Block:     tok.Kind() == warehouse.KindHTMLBlock,
		Tag:       htmlTag(text),
		StartLine: lineOf(tok),
		EndLine:   lastLineOf(tok),
		Snippet:   snippet(text),
		Section:   ctx.CurrentSection(),
	}
	if !frag.Block {
		frag.StartLine += c.breaks
		frag.EndLine = frag.StartLine
	}
	c.fragments.add(frag)
	return nil
}

func htmlTag(text string) string {
	if m := htmlTagPattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// snippet shortens text to htmlSnippetLimit bytes on a rune boundary.
func snippet(text string) string {
	if len(text) <= htmlSnippetLimit {
		return text
	}
	cut := htmlSnippetLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func (c *htmlCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	return c.fragments.output(), nil
}
