package collectors

import (
	"github.com/yaklabco/gomdwarehouse/pkg/urlguard"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// Image is an image reference.
type Image struct {
	Src     string              `json:"src"`
	Alt     string              `json:"alt"`
	Title   string              `json:"title,omitempty"`
	Line    int                 `json:"line"`
	Section warehouse.SectionID `json:"section"`
	Check
}

// ImagesSpec describes the images collector.
func ImagesSpec() Spec {
	return Spec{
		Name:        "images",
		Description: "Image sources with alt text and title. Sources are validated like links.",
		Interests: []warehouse.Kind{
			warehouse.KindInline,
			warehouse.KindSoftbreak,
			warehouse.KindHardbreak,
			warehouse.KindImage,
		},
		IgnoreInside:     warehouse.MaskNone,
		EnabledByDefault: true,
		New: func(s Settings) warehouse.Collector {
			return &imagesCollector{urls: s.validator(), images: newList[Image](s.MaxItems)}
		},
	}
}

type imagesCollector struct {
	urls   *urlguard.Validator
	images list[Image]
	breaks int
}

func (c *imagesCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	switch tok.Kind() {
	case warehouse.KindInline:
		c.breaks = 0
	case warehouse.KindSoftbreak, warehouse.KindHardbreak:
		c.breaks++
	case warehouse.KindImage:
		src, _ := tok.Attr("src")
		title, _ := tok.Attr("title")
		alt, ok := tok.Attr("alt")
		if !ok {
			alt = ctx.Warehouse().InlineText(ctx.TokenID())
		}
		c.images.add(Image{
			Src:     src,
			Alt:     alt,
			Title:   title,
			Line:    lineOf(tok) + c.breaks,
			Section: ctx.CurrentSection(),
			Check:   checkURL(c.urls, src),
		})
	}
	return nil
}

func (c *imagesCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	return c.images.output(), nil
}
