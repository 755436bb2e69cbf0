package warehouse_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwarehouse/pkg/warehouse"
)

func TestMaskTracker_NestedSameContainer(t *testing.T) {
	t.Parallel()

	var tracker warehouse.MaskTracker

	tracker.Enter(warehouse.ContainerList)
	tracker.Enter(warehouse.ContainerList)
	tracker.Enter(warehouse.ContainerBlockquote)
	assert.True(t, tracker.Active().Has(warehouse.ContainerList))
	assert.Equal(t, uint32(2), tracker.Depth(warehouse.ContainerList))

	tracker.Exit(warehouse.ContainerList)
	assert.True(t, tracker.Active().Has(warehouse.ContainerList), "inner list closed, outer still open")

	tracker.Exit(warehouse.ContainerList)
	assert.False(t, tracker.Active().Has(warehouse.ContainerList))
	assert.True(t, tracker.Active().Has(warehouse.ContainerBlockquote))

	tracker.Exit(warehouse.ContainerTable)
	assert.Equal(t, uint32(0), tracker.Depth(warehouse.ContainerTable), "exit never goes below zero")

	tracker.Reset()
	assert.Equal(t, warehouse.MaskNone, tracker.Active())
}

func TestContainerMask_Names(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", warehouse.MaskNone.String())
	assert.Equal(t, "fence|code_block|html_block", warehouse.MaskRaw.String())
	assert.Len(t, warehouse.MaskAll.Containers(), warehouse.NumContainers)

	mask, err := warehouse.ParseMask([]string{"table", " list "})
	require.NoError(t, err)
	assert.True(t, mask.Has(warehouse.ContainerTable))
	assert.True(t, mask.Has(warehouse.ContainerList))
	assert.False(t, mask.Has(warehouse.ContainerFence))
	assert.Equal(t, []string{"table", "list"}, mask.Names())

	_, err = warehouse.ParseMask([]string{"sidebar"})
	assert.Error(t, err)
}

// referenceMask recomputes the active set by scanning an explicit stack.
type referenceMask struct {
	stack []warehouse.Container
}

func (r *referenceMask) enter(c warehouse.Container) {
	r.stack = append(r.stack, c)
}

func (r *referenceMask) exit(c warehouse.Container) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i] == c {
			r.stack = slices.Delete(r.stack, i, i+1)
			return
		}
	}
}

func (r *referenceMask) active() warehouse.ContainerMask {
	var m warehouse.ContainerMask
	for _, c := range r.stack {
		m |= c.Mask()
	}
	return m
}

func runMaskOps(t *testing.T, ops []byte) {
	t.Helper()

	var tracker warehouse.MaskTracker
	var ref referenceMask

	for i, op := range ops {
		c := warehouse.Container(int(op&0x7f) % warehouse.NumContainers)
		if op&0x80 == 0 {
			tracker.Enter(c)
			ref.enter(c)
		} else {
			tracker.Exit(c)
			ref.exit(c)
		}
		if tracker.Active() != ref.active() {
			t.Fatalf("op %d: tracker %s, stack scan %s", i, tracker.Active(), ref.active())
		}
	}
}

func TestMaskTracker_DeepNesting(t *testing.T) {
	t.Parallel()

	const depth = 2000
	ops := make([]byte, 0, 2*depth)
	for i := range depth {
		ops = append(ops, byte(i%warehouse.NumContainers))
	}
	for i := depth - 1; i >= 0; i-- {
		ops = append(ops, 0x80|byte(i%warehouse.NumContainers))
	}
	runMaskOps(t, ops)
}

func FuzzMaskTracker(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 1, 2, 0x80, 0x81, 0x82})
	f.Add([]byte{7, 7, 0x87, 0x87, 0x87})
	f.Add([]byte{0x85, 5, 5, 0x85})
	deep := make([]byte, 2000)
	for i := range deep {
		deep[i] = byte(i % 8)
	}
	f.Add(deep)

	f.Fuzz(func(t *testing.T, ops []byte) {
		runMaskOps(t, ops)
	})
}
