package mdast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
)

func TestToken_LineRange(t *testing.T) {
	t.Parallel()

	tok := mdast.NewToken("paragraph_open", "p", mdast.NestingOpen)
	_, _, ok := tok.LineRange()
	assert.False(t, ok, "token without map has no range")

	tok.WithLines(2, 5)
	start, end, ok := tok.LineRange()
	require.True(t, ok)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)
}

func TestToken_Attrs(t *testing.T) {
	t.Parallel()

	tok := mdast.NewToken("link_open", "a", mdast.NestingOpen)
	tok.SetAttr("href", "https://example.com")
	tok.SetAttr("title", "Example")
	tok.SetAttr("href", "https://example.org")

	href, ok := tok.AttrGet("href")
	require.True(t, ok)
	assert.Equal(t, "https://example.org", href)

	_, ok = tok.AttrGet("rel")
	assert.False(t, ok)

	assert.Equal(t, [][2]string{
		{"href", "https://example.org"},
		{"title", "Example"},
	}, tok.AttrPairs())
}

func TestToken_ChildTokens(t *testing.T) {
	t.Parallel()

	inline := mdast.NewToken("inline", "", mdast.NestingSelf)
	assert.Nil(t, inline.ChildTokens())

	text := mdast.NewToken("text", "", mdast.NestingSelf)
	text.Content = "hello"
	inline.AppendChild(text)

	children := inline.ChildTokens()
	require.Len(t, children, 1)
	assert.Equal(t, "text", children[0].TokenType())
	assert.Equal(t, "hello", children[0].Text())
}

func TestRawTokens(t *testing.T) {
	t.Parallel()

	fence := mdast.NewToken("fence", "code", mdast.NestingSelf).WithLines(0, 3)
	fence.Info = "go"
	raw := mdast.RawTokens([]*mdast.Token{fence})

	require.Len(t, raw, 1)
	assert.Equal(t, "fence", raw[0].TokenType())
	assert.Equal(t, "code", raw[0].TokenTag())
	assert.Equal(t, "go", raw[0].InfoString())
}
