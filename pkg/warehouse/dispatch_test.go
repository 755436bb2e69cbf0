package warehouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/mdast"
	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

// 0-5 link paragraph (line 0), 6 fence (lines 3-7), 7-10 paragraph (line 9),
// 11 blockquote_open, 12-15 paragraph (line 12), 16 blockquote_close.
func containerDoc(t *testing.T) *warehouse.Warehouse {
	t.Helper()
	return build(t, concat(
		linkPara(0, "https://example.com", "site"),
		one(fence(3, 8, "md", "[hidden](https://in.fence)\n")),
		para(9, "after"),
		one(open("blockquote_open", "blockquote", 11, 14)),
		para(12, "quoted"),
		one(closing("blockquote_close", "blockquote")),
	), 15)
}

func TestCollectAll_IgnoreInside(t *testing.T) {
	t.Parallel()

	wh := containerDoc(t)
	interests := []warehouse.Kind{warehouse.KindFence, warehouse.KindText, warehouse.KindLinkOpen}

	ignoring := &recorder{}
	seeing := &recorder{}
	paragraphs := &recorder{}

	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "ignoring", Interests: interests, IgnoreInside: warehouse.ContainerFence.Mask(),
	}, ignoring))
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "seeing", Interests: interests,
	}, seeing))
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "paragraphs",
		Interests: []warehouse.Kind{
			warehouse.KindParagraphOpen, warehouse.KindBlockquoteOpen, warehouse.KindBlockquoteClose,
		},
		IgnoreInside: warehouse.ContainerBlockquote.Mask(),
	}, paragraphs))

	results, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []warehouse.TokenID{2, 3, 9, 14}, ignoring.seen)
	for _, id := range ignoring.seen {
		line := wh.Token(id).Line()
		assert.False(t, line >= 3 && line <= 7, "token %d on fenced line %d", id, line)
	}

	assert.Equal(t, []warehouse.TokenID{2, 3, 6, 9, 14}, seeing.seen)
	assert.True(t, seeing.masks[2].Has(warehouse.ContainerFence), "fence is active while its token is dispatched")
	assert.False(t, seeing.masks[3].Has(warehouse.ContainerFence), "fence ends with its token")
	assert.True(t, seeing.masks[4].Has(warehouse.ContainerBlockquote))

	assert.Equal(t, []warehouse.TokenID{0, 7}, paragraphs.seen, "blockquote open and close are inside the blockquote")

	assert.Equal(t, 4, results["ignoring"].Value)
	assert.Equal(t, "seeing", results["seeing"].Name)
}

func TestCollectAll_CurrentSection(t *testing.T) {
	t.Parallel()

	wh := build(t, concat(para(0, "preamble"), heading(1, 2, "A"), para(3, "a"), heading(2, 5, "B"), para(6, "b")), 7)

	rec := &recorder{}
	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "texts", Interests: []warehouse.Kind{warehouse.KindText},
	}, rec))

	_, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)

	// preamble, "A", a, "B", b
	assert.Equal(t, []warehouse.SectionID{0, 1, 1, 2, 2}, rec.sections)
	for i, id := range rec.seen {
		want, _ := wh.SectionContaining(wh.Token(id).Line())
		assert.Equal(t, want, rec.sections[i], "token %d", id)
	}
}

func TestCollectAll_FaultIsolation(t *testing.T) {
	t.Parallel()

	wh := build(t, concat(para(0, "one"), para(2, "two"), para(4, "three"), para(6, "four")), 7)
	texts := []warehouse.Kind{warehouse.KindText}

	good := &recorder{}
	erroring := &faulty{failAt: 2}
	panicking := &faulty{failAt: 1, panics: true}

	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "panicking", Interests: texts}, panicking))
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "good", Interests: texts}, good))
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "erroring", Interests: texts}, erroring))

	results, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)

	assert.NoError(t, results["good"].Err)
	assert.Equal(t, 4, results["good"].Value)
	assert.Len(t, good.seen, 4)
	assert.Equal(t, 1, good.finalized)

	assert.Equal(t, 1, panicking.calls, "failed collector receives no further tokens")
	assert.False(t, panicking.finalized, "failed collector is not finalized")
	assert.True(t, results["panicking"].Failed())
	assert.ErrorIs(t, results["panicking"].Err, warehouse.ErrCollectorPanic)
	assert.Nil(t, results["panicking"].Value)

	assert.Equal(t, 2, erroring.calls)
	assert.False(t, erroring.finalized)
	var collErr *warehouse.CollectorError
	require.ErrorAs(t, results["erroring"].Err, &collErr)
	assert.Equal(t, "erroring", collErr.Collector)
	assert.Equal(t, warehouse.PhaseToken, collErr.Phase)
	assert.Equal(t, warehouse.TokenID(6), collErr.Token)
	assert.NotErrorIs(t, results["erroring"].Err, warehouse.ErrCollectorPanic)
}

type finalizePanics struct{ recorder }

func (*finalizePanics) Finalize(*warehouse.Context) (warehouse.Output, error) {
	panic("finalize boom")
}

type finalizeFails struct{ recorder }

func (*finalizeFails) Finalize(*warehouse.Context) (warehouse.Output, error) {
	return warehouse.Output{}, errors.New("cannot finalize")
}

func TestCollectAll_FinalizeFailures(t *testing.T) {
	t.Parallel()

	wh := build(t, para(0, "x"), 1)
	texts := []warehouse.Kind{warehouse.KindText}

	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "panics", Interests: texts}, &finalizePanics{}))
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "fails", Interests: texts}, &finalizeFails{}))
	require.NoError(t, reg.Register(warehouse.Descriptor{Name: "ok", Interests: texts}, &recorder{}))

	results, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)

	var collErr *warehouse.CollectorError
	require.ErrorAs(t, results["panics"].Err, &collErr)
	assert.Equal(t, warehouse.PhaseFinalize, collErr.Phase)
	assert.ErrorIs(t, results["panics"].Err, warehouse.ErrCollectorPanic)
	assert.EqualError(t, results["fails"].Err, `collector "fails" failed during finalize: cannot finalize`)
	assert.Equal(t, 1, results["ok"].Value)
}

type lateLines struct {
	recorder
	from uint32
}

func (l *lateLines) ShouldProcess(_ *warehouse.Context, tok *warehouse.Token) bool {
	return tok.Line() >= l.from
}

func TestCollectAll_Filter(t *testing.T) {
	t.Parallel()

	wh := build(t, concat(para(0, "a"), para(2, "b"), para(4, "c")), 5)

	filtered := &lateLines{from: 2}
	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "late", Interests: []warehouse.Kind{warehouse.KindText},
	}, filtered))

	_, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, []warehouse.TokenID{6, 10}, filtered.seen)
}

func TestCollectAll_RoutingOrder(t *testing.T) {
	t.Parallel()

	wh := build(t, para(0, "x"), 1)

	var order []string
	reg := warehouse.NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, reg.Register(warehouse.Descriptor{
			Name: name, Interests: []warehouse.Kind{warehouse.KindText, warehouse.KindText},
		}, &orderLog{name: name, order: &order}))
	}

	_, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, order, "registration order, duplicates routed once")
	assert.Equal(t, []string{"c", "a", "b"}, reg.Names())
}

type orderLog struct {
	name  string
	order *[]string
}

func (p *orderLog) OnToken(*warehouse.Context, *warehouse.Token) error {
	*p.order = append(*p.order, p.name)
	return nil
}

func (p *orderLog) Finalize(*warehouse.Context) (warehouse.Output, error) {
	return warehouse.Output{}, nil
}

func TestRegistry_Validation(t *testing.T) {
	t.Parallel()

	texts := []warehouse.Kind{warehouse.KindText}

	tests := []struct {
		name    string
		desc    warehouse.Descriptor
		coll    warehouse.Collector
		wantErr error
	}{
		{"empty name", warehouse.Descriptor{Interests: texts}, &recorder{}, warehouse.ErrInvalidDescriptor},
		{"no interests", warehouse.Descriptor{Name: "x"}, &recorder{}, warehouse.ErrInvalidDescriptor},
		{"invalid kind", warehouse.Descriptor{Name: "x", Interests: []warehouse.Kind{9999}}, &recorder{}, warehouse.ErrInvalidDescriptor},
		{"nil collector", warehouse.Descriptor{Name: "x", Interests: texts}, nil, warehouse.ErrInvalidDescriptor},
		{"duplicate", warehouse.Descriptor{Name: "dup", Interests: texts}, &recorder{}, warehouse.ErrDuplicateCollector},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			reg := warehouse.NewRegistry()
			require.NoError(t, reg.Register(warehouse.Descriptor{Name: "dup", Interests: texts}, &recorder{}))
			err := reg.Register(testCase.desc, testCase.coll)
			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Equal(t, 1, reg.Len())
		})
	}
}

func TestRegistry_DescriptorIsCopied(t *testing.T) {
	t.Parallel()

	interests := []warehouse.Kind{warehouse.KindText}
	reg := warehouse.NewRegistry()
	reg.MustRegister(warehouse.Descriptor{Name: "x", Interests: interests, MaxItems: 5}, &recorder{})
	interests[0] = warehouse.KindFence

	desc, ok := reg.Descriptor("x")
	require.True(t, ok)
	assert.Equal(t, []warehouse.Kind{warehouse.KindText}, desc.Interests)
	assert.Equal(t, 5, desc.MaxItems)

	_, ok = reg.Descriptor("missing")
	assert.False(t, ok)
}

func TestCollectAll_RegistryConsumed(t *testing.T) {
	t.Parallel()

	wh := build(t, para(0, "x"), 1)
	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "x", Interests: []warehouse.Kind{warehouse.KindText},
	}, &recorder{}))

	_, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)

	_, err = wh.CollectAll(context.Background(), reg)
	require.ErrorIs(t, err, warehouse.ErrRegistryConsumed)

	err = reg.Register(warehouse.Descriptor{Name: "y", Interests: []warehouse.Kind{warehouse.KindText}}, &recorder{})
	assert.ErrorIs(t, err, warehouse.ErrRegistryConsumed)
}

func TestCollectAll_Cancelled(t *testing.T) {
	t.Parallel()

	tokens := make([]*mdast.Token, 0, 3000)
	for i := range 3000 {
		tokens = append(tokens, mdast.NewToken("hr", "hr", mdast.NestingSelf).WithLines(i, i+1))
	}
	wh := build(t, tokens, 3000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := warehouse.NewRegistry()
	require.NoError(t, reg.Register(warehouse.Descriptor{
		Name: "hr", Interests: []warehouse.Kind{warehouse.KindHr},
	}, &recorder{}))

	results, err := wh.CollectAll(ctx, reg)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

// nestedContainers alternates depth levels of bullet lists and blockquotes
// around one paragraph, starting with a list.
func nestedContainers(depth int) []*mdast.Token {
	tokens := make([]*mdast.Token, 0, 2*depth+3)
	for level := range depth {
		if level%2 == 0 {
			tokens = append(tokens, open("bullet_list_open", "ul", level, depth+1))
		} else {
			tokens = append(tokens, open("blockquote_open", "blockquote", level, depth+1))
		}
	}
	tokens = append(tokens, para(depth, "deep")...)
	for level := depth - 1; level >= 0; level-- {
		if level%2 == 0 {
			tokens = append(tokens, closing("bullet_list_close", "ul"))
		} else {
			tokens = append(tokens, closing("blockquote_close", "blockquote"))
		}
	}
	return tokens
}

// stackMasks computes the expected active mask of every token by scanning an
// explicit container stack.
func stackMasks(wh *warehouse.Warehouse) []warehouse.ContainerMask {
	masks := make([]warehouse.ContainerMask, wh.Len())
	var stack []warehouse.Container
	for i := range wh.Len() {
		kind := wh.Token(warehouse.TokenID(i)).Kind()
		switch kind {
		case warehouse.KindBulletListOpen:
			stack = append(stack, warehouse.ContainerList)
		case warehouse.KindBlockquoteOpen:
			stack = append(stack, warehouse.ContainerBlockquote)
		}
		var mask warehouse.ContainerMask
		for _, c := range stack {
			mask |= c.Mask()
		}
		masks[i] = mask
		if kind == warehouse.KindBulletListClose || kind == warehouse.KindBlockquoteClose {
			stack = stack[:len(stack)-1]
		}
	}
	return masks
}

func TestCollectAll_DeepContainerNesting(t *testing.T) {
	t.Parallel()

	const depth = 2000
	wh := build(t, nestedContainers(depth), depth+1)
	require.Equal(t, 2*depth+4, wh.Len())
	require.NoError(t, checkPairInvariant(wh))

	pair, ok := wh.PairRangeOf(0)
	require.True(t, ok)
	assert.Equal(t, warehouse.TokenID(wh.Len()-1), pair.Close)

	every := &recorder{}
	outsideQuotes := &recorder{}
	reg := warehouse.NewRegistry()
	reg.MustRegister(warehouse.Descriptor{
		Name: "every",
		Interests: []warehouse.Kind{
			warehouse.KindBulletListOpen, warehouse.KindBulletListClose,
			warehouse.KindBlockquoteOpen, warehouse.KindBlockquoteClose,
			warehouse.KindParagraphOpen, warehouse.KindText,
		},
	}, every)
	reg.MustRegister(warehouse.Descriptor{
		Name:         "outside-quotes",
		Interests:    []warehouse.Kind{warehouse.KindBulletListOpen, warehouse.KindParagraphOpen},
		IgnoreInside: warehouse.ContainerBlockquote.Mask(),
	}, outsideQuotes)

	results, err := wh.CollectAll(context.Background(), reg)
	require.NoError(t, err)
	for name, result := range results {
		assert.False(t, result.Failed(), name)
	}

	want := stackMasks(wh)
	require.Len(t, every.seen, 2*depth+2, "every container token, the paragraph and its text")
	for i, id := range every.seen {
		require.Equal(t, want[id], every.masks[i], "mask of token %d", id)
	}

	both := warehouse.ContainerList.Mask() | warehouse.ContainerBlockquote.Mask()
	assert.Equal(t, warehouse.ContainerList.Mask(), every.masks[0])
	assert.Equal(t, both, every.masks[depth])

	assert.Equal(t, []warehouse.TokenID{0}, outsideQuotes.seen, "only the outermost list is outside every blockquote")
}

// sliceOutput finalizes with a fixed slice.
type sliceOutput struct {
	items []string
}

func (*sliceOutput) OnToken(*warehouse.Context, *warehouse.Token) error { return nil }

func (s *sliceOutput) Finalize(*warehouse.Context) (warehouse.Output, error) {
	return warehouse.Output{Value: s.items}, nil
}

func TestCollectAll_MaxItems(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d"}
	interests := []warehouse.Kind{warehouse.KindText}

	reg := warehouse.NewRegistry()
	reg.MustRegister(warehouse.Descriptor{Name: "capped", Interests: interests, MaxItems: 2}, &sliceOutput{items: items})
	reg.MustRegister(warehouse.Descriptor{Name: "roomy", Interests: interests, MaxItems: 4}, &sliceOutput{items: items})
	reg.MustRegister(warehouse.Descriptor{Name: "unlimited", Interests: interests}, &sliceOutput{items: items})
	reg.MustRegister(warehouse.Descriptor{Name: "scalar", Interests: interests, MaxItems: 1}, &recorder{})

	results, err := containerDoc(t).CollectAll(context.Background(), reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, results["capped"].Value)
	assert.True(t, results["capped"].Truncated)

	for _, name := range []string{"roomy", "unlimited"} {
		assert.Equal(t, items, results[name].Value, name)
		assert.False(t, results[name].Truncated, name)
	}

	assert.False(t, results["scalar"].Truncated, "non-slice values are left alone")
	assert.Equal(t, 3, results["scalar"].Value)
}
