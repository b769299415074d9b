package scene

import "strings"

// Layout is a per-node bitmask of render related flags.
type Layout uint32

const (
	LayoutDefault Layout = 1 << iota
	LayoutDebugOnly
	LayoutStatic
	LayoutIgnoreRaycasting
	LayoutIgnoreCulling
	LayoutHidden
	LayoutPicking
	LayoutInsideFrustum
)

var layoutNames = []string{
	"default", "debug-only", "static", "ignore-raycasting",
	"ignore-culling", "hidden", "picking", "inside-frustum",
}

// Has returns true if all bits of mask are set.
func (l Layout) Has(mask Layout) bool {
	return l&mask == mask
}

func (l Layout) String() string {
	var names []string
	for bit, name := range layoutNames {
		if l&(1<<bit) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
