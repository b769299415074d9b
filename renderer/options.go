package renderer

import "github.com/achilleasa/octocull/scene"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Surfaces are drawn when their node layout contains all bits of the
	// mask. A zero mask selects scene.LayoutDefault.
	LayoutMask scene.Layout

	// Keep the draw list sorted front to back.
	SortFrontToBack bool
}

func (opts Options) layoutMask() scene.Layout {
	if opts.LayoutMask == 0 {
		return scene.LayoutDefault
	}
	return opts.LayoutMask
}
