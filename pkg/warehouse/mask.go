package warehouse

import (
	"fmt"
	"math/bits"
	"strings"
)

// Container is one of the exclusion containers a collector can ignore.
// The set is closed and fits in a ContainerMask.
type Container uint8

// Containers.
const (
	ContainerFence Container = iota
	ContainerCodeBlock
	ContainerHTMLBlock
	ContainerMathBlock
	ContainerFrontMatter
	ContainerBlockquote
	ContainerTable
	ContainerList

	containerCount
)

// NumContainers is the number of defined containers.
const NumContainers = int(containerCount)

//nolint:gochecknoglobals // Static lookup table.
var containerNames = [containerCount]string{
	ContainerFence:       "fence",
	ContainerCodeBlock:   "code_block",
	ContainerHTMLBlock:   "html_block",
	ContainerMathBlock:   "math_block",
	ContainerFrontMatter: "front_matter",
	ContainerBlockquote:  "blockquote",
	ContainerTable:       "table",
	ContainerList:        "list",
}

func (c Container) String() string {
	if c >= containerCount {
		return "invalid"
	}
	return containerNames[c]
}

// Mask returns the single-bit mask for c.
func (c Container) Mask() ContainerMask {
	return ContainerMask(1) << c
}

// ParseContainer resolves a container by name.
func ParseContainer(name string) (Container, error) {
	for c, n := range containerNames {
		if n == name {
			return Container(c), nil
		}
	}
	return 0, fmt.Errorf("unknown container %q", name)
}

// ContainerMask is a set of containers.
type ContainerMask uint32

// Common masks.
const (
	MaskNone ContainerMask = 0
	MaskCode               = ContainerMask(1)<<ContainerFence | ContainerMask(1)<<ContainerCodeBlock
	MaskRaw                = MaskCode | ContainerMask(1)<<ContainerHTMLBlock
	MaskAll                = ContainerMask(1)<<containerCount - 1
)

// ParseMask builds a mask from container names.
func ParseMask(names []string) (ContainerMask, error) {
	var m ContainerMask
	for _, name := range names {
		c, err := ParseContainer(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
		m |= c.Mask()
	}
	return m, nil
}

// Has reports whether c is in the mask.
func (m ContainerMask) Has(c Container) bool {
	return m&c.Mask() != 0
}

// Intersects reports whether the masks share a container.
func (m ContainerMask) Intersects(other ContainerMask) bool {
	return m&other != 0
}

// Containers lists the containers in the mask in declaration order.
func (m ContainerMask) Containers() []Container {
	out := make([]Container, 0, bits.OnesCount32(uint32(m)))
	for c := range containerCount {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Names lists container names in declaration order.
func (m ContainerMask) Names() []string {
	cs := m.Containers()
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.String()
	}
	return names
}

func (m ContainerMask) String() string {
	if m == MaskNone {
		return "none"
	}
	return strings.Join(m.Names(), "|")
}

// containerRole says how a kind affects the tracker.
type containerRole uint8

const (
	roleNone containerRole = iota
	roleSelf
	roleOpen
	roleClose
)

// containerOf maps a kind to its container and role.
func containerOf(k Kind) (Container, containerRole) {
	switch k {
	case KindFence:
		return ContainerFence, roleSelf
	case KindCodeBlock:
		return ContainerCodeBlock, roleSelf
	case KindHTMLBlock:
		return ContainerHTMLBlock, roleSelf
	case KindMathBlock:
		return ContainerMathBlock, roleSelf
	case KindFrontMatter:
		return ContainerFrontMatter, roleSelf
	case KindBlockquoteOpen:
		return ContainerBlockquote, roleOpen
	case KindBlockquoteClose:
		return ContainerBlockquote, roleClose
	case KindTableOpen:
		return ContainerTable, roleOpen
	case KindTableClose:
		return ContainerTable, roleClose
	case KindBulletListOpen, KindOrderedListOpen:
		return ContainerList, roleOpen
	case KindBulletListClose, KindOrderedListClose:
		return ContainerList, roleClose
	default:
		return 0, roleNone
	}
}

// MaskTracker maintains the active container mask with one depth counter per
// container, so nested containers of the same kind are tracked correctly.
type MaskTracker struct {
	active ContainerMask
	depth  [containerCount]uint32
}

// Enter records entry into c.
func (t *MaskTracker) Enter(c Container) {
	if c >= containerCount {
		return
	}
	t.depth[c]++
	t.active |= c.Mask()
}

// Exit records exit from c. Exiting a container that is not active is a no-op.
func (t *MaskTracker) Exit(c Container) {
	if c >= containerCount || t.depth[c] == 0 {
		return
	}
	t.depth[c]--
	if t.depth[c] == 0 {
		t.active &^= c.Mask()
	}
}

// Active returns the current mask.
func (t *MaskTracker) Active() ContainerMask {
	return t.active
}

// Depth returns the nesting depth of c.
func (t *MaskTracker) Depth(c Container) uint32 {
	if c >= containerCount {
		return 0
	}
	return t.depth[c]
}

// Reset clears all state.
func (t *MaskTracker) Reset() {
	*t = MaskTracker{}
}

// before updates the tracker ahead of dispatching a token: opens and
// self-contained containers become active.
func (t *MaskTracker) before(k Kind) {
	if c, role := containerOf(k); role == roleOpen || role == roleSelf {
		t.Enter(c)
	}
}

// after updates the tracker once a token was dispatched: closes and
// self-contained containers are left.
func (t *MaskTracker) after(k Kind) {
	if c, role := containerOf(k); role == roleClose || role == roleSelf {
		t.Exit(c)
	}
}
