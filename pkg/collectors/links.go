package collectors

import (
	"regexp"
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/urlguard"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// LinkSource says where a link was found.
type LinkSource string

// Link sources.
const (
	SourceLink     LinkSource = "link"
	SourceAutolink LinkSource = "autolink"
	SourceBare     LinkSource = "bare"
	SourceCode     LinkSource = "code"
	SourceHTML     LinkSource = "html"
)

// Check is the URL validation outcome attached to links and images.
type Check struct {
	Safe       bool     `json:"safe"`
	Normalized string   `json:"normalized,omitempty"`
	Layer      string   `json:"layer,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func checkURL(v *urlguard.Validator, raw string) Check {
	verdict := v.Validate(raw)
	c := Check{
		Safe:       verdict.Valid,
		Normalized: verdict.Normalized,
		Reason:     verdict.Reason,
		Warnings:   verdict.Warnings,
	}
	if !verdict.Valid {
		c.Layer = verdict.Layer.String()
	}
	return c
}

// Link is a link destination found in the document. Unsafe links are kept
// with Safe set to false; they are never rewritten.
type Link struct {
	URL     string              `json:"url"`
	Text    string              `json:"text,omitempty"`
	Title   string              `json:"title,omitempty"`
	Source  LinkSource          `json:"source"`
	Line    int                 `json:"line"`
	Section warehouse.SectionID `json:"section"`
	Check
}

// bareURLPattern matches URLs in text that the tokenizer did not link.
var bareURLPattern = regexp.MustCompile(`(?i)\b(?:https?|ftp|mailto|javascript|data|vbscript|file):[^\s<>"'\x60\[\]()]+`)

// htmlURLPattern matches href and src attribute values.
var htmlURLPattern = regexp.MustCompile(`(?i)\b(?:href|src)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// LinksSpec describes the links collector.
func LinksSpec() Spec {
	return Spec{
		Name:        "links",
		Description: "Link destinations with their text, plus URL-like text in code spans and HTML. Every URL is validated.",
		Interests: []warehouse.Kind{
			warehouse.KindInline,
			warehouse.KindSoftbreak,
			warehouse.KindHardbreak,
			warehouse.KindLinkOpen,
			warehouse.KindLinkClose,
			warehouse.KindText,
			warehouse.KindCodeInline,
			warehouse.KindHTMLInline,
			warehouse.KindFence,
			warehouse.KindCodeBlock,
			warehouse.KindHTMLBlock,
		},
		IgnoreInside:     warehouse.MaskRaw,
		EnabledByDefault: true,
		New: func(s Settings) warehouse.Collector {
			return &linksCollector{
				urls:  s.validator(),
				bare:  s.Bool("bare", true),
				links: newList[Link](s.MaxItems),
			}
		},
	}
}

type linksCollector struct {
	urls  *urlguard.Validator
	bare  bool
	links list[Link]

	// open is the link whose text is being gathered.
	open *Link
	text strings.Builder

	// breaks counts line breaks seen in the current inline token, since
	// inline children all share their parent's first line.
	breaks int
}

func (c *linksCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	switch tok.Kind() {
	case warehouse.KindInline:
		c.breaks = 0

	case warehouse.KindSoftbreak, warehouse.KindHardbreak:
		c.breaks++
		if c.open != nil {
			c.text.WriteByte(' ')
		}

	case warehouse.KindLinkOpen:
		c.flush()
		href, _ := tok.Attr("href")
		title, _ := tok.Attr("title")
		source := SourceLink
		if tok.Info() == "auto" {
			source = SourceAutolink
		}
		c.open = &Link{
			URL:     href,
			Title:   title,
			Source:  source,
			Line:    lineOf(tok) + c.breaks,
			Section: ctx.CurrentSection(),
			Check:   checkURL(c.urls, href),
		}

	case warehouse.KindLinkClose:
		c.flush()

	case warehouse.KindText:
		if c.open != nil {
			c.text.WriteString(tok.Text())
			return nil
		}
		if c.bare {
			c.scan(ctx, tok, SourceBare, bareURLPattern)
		}

	case warehouse.KindCodeInline:
		if c.open != nil {
			c.text.WriteString(tok.Text())
			return nil
		}
		c.scan(ctx, tok, SourceCode, bareURLPattern)

	case warehouse.KindFence, warehouse.KindCodeBlock:
		c.scan(ctx, tok, SourceCode, bareURLPattern)

	case warehouse.KindHTMLInline, warehouse.KindHTMLBlock:
		c.scan(ctx, tok, SourceHTML, htmlURLPattern)
	}
	return nil
}

// flush records the open link, if any.
func (c *linksCollector) flush() {
	if c.open == nil {
		return
	}
	c.open.Text = strings.TrimSpace(c.text.String())
	c.links.add(*c.open)
	c.open = nil
	c.text.Reset()
}

// scan records every URL the pattern finds in the token text. Lines are
// counted from the token's first line; fences skip their opening line.
func (c *linksCollector) scan(ctx *warehouse.Context, tok *warehouse.Token, source LinkSource, pattern *regexp.Regexp) {
	text := tok.Text()
	if text == "" {
		return
	}

	base := lineOf(tok)
	switch tok.Kind() {
	case warehouse.KindFence:
		base++
	case warehouse.KindText, warehouse.KindCodeInline, warehouse.KindHTMLInline:
		base += c.breaks
	}

	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		// Prefer the first capture group that matched.
		for g := 2; g+1 < len(m); g += 2 {
			if m[g] >= 0 {
				start, end = m[g], m[g+1]
				break
			}
		}

		raw := trimTrailingPunct(text[start:end])
		if raw == "" {
			continue
		}
		c.links.add(Link{
			URL:     raw,
			Source:  source,
			Line:    base + strings.Count(text[:start], "\n"),
			Section: ctx.CurrentSection(),
			Check:   checkURL(c.urls, raw),
		})
	}
}

// trimTrailingPunct drops sentence punctuation that follows a bare URL.
func trimTrailingPunct(s string) string {
	return strings.TrimRight(s, ".,;:!?*_~")
}

func (c *linksCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	c.flush()
	return c.links.output(), nil
}
