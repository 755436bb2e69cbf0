package collectors

import (
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// Heading is a document heading with its anchor.
type Heading struct {
	Level   uint8               `json:"level"`
	Text    string              `json:"text"`
	Anchor  string              `json:"anchor"`
	Line    int                 `json:"line"`
	Section warehouse.SectionID `json:"section"`
}

// HeadingsSpec describes the headings collector.
func HeadingsSpec() Spec {
	return Spec{
		Name:             "headings",
		Description:      "Headings with level, text, GitHub-style anchor and section id.",
		Interests:        []warehouse.Kind{warehouse.KindHeadingOpen},
		IgnoreInside:     warehouse.MaskNone,
		EnabledByDefault: true,
		New: func(s Settings) warehouse.Collector {
			return &headingsCollector{slugs: newSlugger(), headings: newList[Heading](s.MaxItems)}
		},
	}
}

type headingsCollector struct {
	slugs    *slugger
	headings list[Heading]
}

func (c *headingsCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	level := tok.HeadingLevel()
	if level == 0 {
		return nil
	}

	wh := ctx.Warehouse()
	var text string
	if inline := wh.Token(ctx.TokenID() + 1); inline != nil && inline.Kind() == warehouse.KindInline {
		text = strings.TrimSpace(wh.InlineText(ctx.TokenID() + 1))
	}

	// Every heading consumes an anchor, listed or not.
	anchor := c.slugs.slug(text)
	c.headings.add(Heading{
		Level:   level,
		Text:    text,
		Anchor:  anchor,
		Line:    lineOf(tok),
		Section: ctx.CurrentSection(),
	})
	return nil
}

func (c *headingsCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	return c.headings.output(), nil
}
