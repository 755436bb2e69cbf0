package collectors

import (
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/langdetect"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	StartLine int                 `json:"start_line"`
	EndLine   int                 `json:"end_line"`
	Info      string              `json:"info,omitempty"`
	Language  string              `json:"language"`
	Method    langdetect.Method   `json:"method"`
	Indented  bool                `json:"indented,omitempty"`
	CodeLines int                 `json:"code_lines"`
	Section   warehouse.SectionID `json:"section"`
}

// FencesSpec describes the fences collector.
//
// Options:
//   - detect (default true): guess the language of blocks without one.
//   - indented (default false): include indented code blocks.
func FencesSpec() Spec {
	return Spec{
		Name:             "fences",
		Description:      "Fenced code blocks with info string and language. Blocks without a language get a detected hint.",
		Interests:        []warehouse.Kind{warehouse.KindFence, warehouse.KindCodeBlock},
		IgnoreInside:     warehouse.MaskNone,
		EnabledByDefault: true,
		New: func(s Settings) warehouse.Collector {
			return &fencesCollector{
				detect:   s.Bool("detect", true),
				indented: s.Bool("indented", false),
				blocks:   newList[CodeBlock](s.MaxItems),
			}
		},
	}
}

type fencesCollector struct {
	detect   bool
	indented bool
	blocks   list[CodeBlock]
}

func (c *fencesCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	indented := tok.Kind() == warehouse.KindCodeBlock
	if indented && !c.indented {
		return nil
	}

	code := tok.Text()
	block := CodeBlock{
		StartLine: lineOf(tok),
		EndLine:   lastLineOf(tok),
		Info:      strings.TrimSpace(tok.Info()),
		Indented:  indented,
		CodeLines: countLines(code),
		Section:   ctx.CurrentSection(),
	}

	declared := warehouse.FenceLanguage(tok.Info())
	switch {
	case declared != "" || c.detect:
		hint := langdetect.ForFence(declared, []byte(code))
		block.Language, block.Method = hint.Language, hint.Method
	default:
		block.Language, block.Method = langdetect.Unknown, langdetect.MethodNone
	}

	c.blocks.add(block)
	return nil
}

func countLines(code string) int {
	if code == "" {
		return 0
	}
	n := strings.Count(code, "\n")
	if !strings.HasSuffix(code, "\n") {
		n++
	}
	return n
}

func (c *fencesCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	return c.blocks.output(), nil
}
