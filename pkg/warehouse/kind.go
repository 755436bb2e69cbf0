package warehouse

import "strings"

// Kind is the closed set of token kinds the warehouse understands.
// Unknown type names map to KindOther; tokens that could not be read map to
// KindMalformed.
type Kind uint16

// Token kinds, named after the markdown-it token types they come from.
const (
	KindOther Kind = iota
	KindMalformed
	KindHeadingOpen
	KindHeadingClose
	KindParagraphOpen
	KindParagraphClose
	KindInline
	KindText
	KindSoftbreak
	KindHardbreak
	KindFence
	KindCodeBlock
	KindCodeInline
	KindHTMLBlock
	KindHTMLInline
	KindLinkOpen
	KindLinkClose
	KindImage
	KindBulletListOpen
	KindBulletListClose
	KindOrderedListOpen
	KindOrderedListClose
	KindListItemOpen
	KindListItemClose
	KindBlockquoteOpen
	KindBlockquoteClose
	KindTableOpen
	KindTableClose
	KindTheadOpen
	KindTheadClose
	KindTbodyOpen
	KindTbodyClose
	KindTrOpen
	KindTrClose
	KindThOpen
	KindThClose
	KindTdOpen
	KindTdClose
	KindHr
	KindEmOpen
	KindEmClose
	KindStrongOpen
	KindStrongClose
	KindStrikethroughOpen
	KindStrikethroughClose
	KindMathBlock
	KindMathInline
	KindFrontMatter

	kindCount
)

// NumKinds is the number of defined kinds. Valid kinds are [0, NumKinds).
const NumKinds = int(kindCount)

//nolint:gochecknoglobals // Static lookup table.
var kindNames = [kindCount]string{
	KindOther:              "other",
	KindMalformed:          "malformed",
	KindHeadingOpen:        "heading_open",
	KindHeadingClose:       "heading_close",
	KindParagraphOpen:      "paragraph_open",
	KindParagraphClose:     "paragraph_close",
	KindInline:             "inline",
	KindText:               "text",
	KindSoftbreak:          "softbreak",
	KindHardbreak:          "hardbreak",
	KindFence:              "fence",
	KindCodeBlock:          "code_block",
	KindCodeInline:         "code_inline",
	KindHTMLBlock:          "html_block",
	KindHTMLInline:         "html_inline",
	KindLinkOpen:           "link_open",
	KindLinkClose:          "link_close",
	KindImage:              "image",
	KindBulletListOpen:     "bullet_list_open",
	KindBulletListClose:    "bullet_list_close",
	KindOrderedListOpen:    "ordered_list_open",
	KindOrderedListClose:   "ordered_list_close",
	KindListItemOpen:       "list_item_open",
	KindListItemClose:      "list_item_close",
	KindBlockquoteOpen:     "blockquote_open",
	KindBlockquoteClose:    "blockquote_close",
	KindTableOpen:          "table_open",
	KindTableClose:         "table_close",
	KindTheadOpen:          "thead_open",
	KindTheadClose:         "thead_close",
	KindTbodyOpen:          "tbody_open",
	KindTbodyClose:         "tbody_close",
	KindTrOpen:             "tr_open",
	KindTrClose:            "tr_close",
	KindThOpen:             "th_open",
	KindThClose:            "th_close",
	KindTdOpen:             "td_open",
	KindTdClose:            "td_close",
	KindHr:                 "hr",
	KindEmOpen:             "em_open",
	KindEmClose:            "em_close",
	KindStrongOpen:         "strong_open",
	KindStrongClose:        "strong_close",
	KindStrikethroughOpen:  "s_open",
	KindStrikethroughClose: "s_close",
	KindMathBlock:          "math_block",
	KindMathInline:         "math_inline",
	KindFrontMatter:        "front_matter",
}

//nolint:gochecknoglobals // Built once from kindNames.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	// Not a real token type; never let input claim it.
	delete(m, kindNames[KindMalformed])
	delete(m, kindNames[KindOther])
	return m
}()

// String returns the markdown-it type name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

// KindOf maps a raw token type name to its Kind.
func KindOf(typeName string) Kind {
	if k, ok := kindByName[typeName]; ok {
		return k
	}
	return KindOther
}

// ParseKind resolves a kind name, including "other" and "malformed".
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindOther, false
}

// nestingOf derives open/close/self nesting from a type name suffix.
func nestingOf(typeName string) int8 {
	switch {
	case strings.HasSuffix(typeName, "_open"):
		return 1
	case strings.HasSuffix(typeName, "_close"):
		return -1
	default:
		return 0
	}
}

// pairStem returns the part of a type name shared by an open and its close.
func pairStem(typeName string) string {
	if stem, ok := strings.CutSuffix(typeName, "_open"); ok {
		return stem
	}
	if stem, ok := strings.CutSuffix(typeName, "_close"); ok {
		return stem
	}
	return ""
}
