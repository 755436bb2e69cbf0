package collectors

import (
	"strings"

	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// Table summarizes a GFM table.
type Table struct {
	StartLine int                 `json:"start_line"`
	EndLine   int                 `json:"end_line"`
	Header    []string            `json:"header"`
	Align     []string            `json:"align"`
	Rows      int                 `json:"rows"`
	Columns   int                 `json:"columns"`
	Section   warehouse.SectionID `json:"section"`
}

// TablesSpec describes the tables collector.
func TablesSpec() Spec {
	return Spec{
		Name:        "tables",
		Description: "Tables with line range, header cells, alignment and row and column counts.",
		Interests: []warehouse.Kind{
			warehouse.KindTableOpen,
			warehouse.KindTableClose,
			warehouse.KindTheadOpen,
			warehouse.KindTheadClose,
			warehouse.KindTrOpen,
			warehouse.KindThOpen,
			warehouse.KindTdOpen,
		},
		IgnoreInside:     warehouse.MaskNone,
		EnabledByDefault: true,
		New: func(s Settings) warehouse.Collector {
			return &tablesCollector{tables: newList[Table](s.MaxItems)}
		},
	}
}

type tableState struct {
	table  Table
	inHead bool
	cells  int
}

type tablesCollector struct {
	tables list[Table]
	open   []*tableState
}

func (c *tablesCollector) OnToken(ctx *warehouse.Context, tok *warehouse.Token) error {
	if tok.Kind() == warehouse.KindTableOpen {
		c.open = append(c.open, &tableState{table: Table{
			StartLine: lineOf(tok),
			EndLine:   lastLineOf(tok),
			Header:    []string{},
			Align:     []string{},
			Section:   ctx.CurrentSection(),
		}})
		return nil
	}
	if len(c.open) == 0 {
		return nil
	}
	st := c.open[len(c.open)-1]

	switch tok.Kind() {
	case warehouse.KindTableClose:
		c.endRow(st)
		c.tables.add(st.table)
		c.open = c.open[:len(c.open)-1]

	case warehouse.KindTheadOpen:
		st.inHead = true

	case warehouse.KindTheadClose:
		c.endRow(st)
		st.inHead = false

	case warehouse.KindTrOpen:
		c.endRow(st)
		if !st.inHead {
			st.table.Rows++
		}

	case warehouse.KindThOpen, warehouse.KindTdOpen:
		st.cells++
		if st.inHead {
			st.table.Header = append(st.table.Header, cellText(ctx))
			st.table.Align = append(st.table.Align, alignment(tok))
		}
	}
	return nil
}

// endRow folds the finished row's cell count into Columns.
func (c *tablesCollector) endRow(st *tableState) {
	st.table.Columns = max(st.table.Columns, st.cells)
	st.cells = 0
}

func cellText(ctx *warehouse.Context) string {
	wh := ctx.Warehouse()
	next := ctx.TokenID() + 1
	if tok := wh.Token(next); tok != nil && tok.Kind() == warehouse.KindInline {
		return strings.TrimSpace(wh.InlineText(next))
	}
	return ""
}

// alignment reads the text-align style of a cell; empty means none.
func alignment(tok *warehouse.Token) string {
	style, _ := tok.Attr("style")
	align, _ := strings.CutPrefix(style, "text-align:")
	return strings.TrimSpace(align)
}

func (c *tablesCollector) Finalize(_ *warehouse.Context) (warehouse.Output, error) {
	// Unclosed tables still count.
	for len(c.open) > 0 {
		st := c.open[len(c.open)-1]
		c.endRow(st)
		c.tables.add(st.table)
		c.open = c.open[:len(c.open)-1]
	}
	return c.tables.output(), nil
}
