package goldmark

import (
	"context"
	"testing"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// FuzzParse checks that any input tokenizes into well-formed line maps that
// the warehouse accepts without malformed-token warnings.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"Hello, world!",
		"# Heading",
		"- list\n- items",
		"```\ncode\n```",
		"```\n",
		"*emphasis* and **strong**",
		"[link](url) and ![image *alt*](src)",
		"# Title\n\nParagraph.\n\n- item\n\n> quote\n",
		"| a | b |\n|---|---|\n| 1 |\n",
		"---\nk: v\n---\ntext",
		"- - - -\n- ```\n  x\n  ```",
		"<div>\n\n</div>",
		"Title\n=====",
		"line1\r\nline2\r\n",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed), false)
	}

	parsers := map[bool]*Parser{
		false: New(FlavorCommonMark),
		true:  New(FlavorGFM),
	}

	f.Fuzz(func(t *testing.T, data []byte, gfm bool) {
		stream, err := parsers[gfm].Parse(context.Background(), "fuzz.md", data)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		err = mdast.Walk(stream.Tokens, func(tok *mdast.Token, _ int) error {
			if tok.Map != nil && (tok.Map.Start < 0 || tok.Map.End < tok.Map.Start) {
				t.Fatalf("%s: bad line map %+v", tok.Type, *tok.Map)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		wh, err := warehouse.New(warehouse.Source{
			Tokens:    mdast.RawTokens(stream.Tokens),
			Size:      int64(stream.Size()),
			LineCount: stream.LineCount(),
		}, warehouse.Options{})
		if err != nil {
			t.Fatalf("warehouse.New: %v", err)
		}
		if warnings := wh.Warnings(); len(warnings) > 0 {
			t.Fatalf("unexpected warnings: %v", warnings)
		}
	})
}
