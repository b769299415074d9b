package renderer

import (
	"time"

	"github.com/achilleasa/octocull/octree"
)

type FrameStats struct {
	// The frame number.
	Frame uint64

	// Number of drawn surfaces and the triangles they contain.
	Drawn     int
	Triangles int

	// Surfaces skipped because of their layout.
	Culled int

	// Octree traversal stats of the culling component bound to the camera.
	Octree octree.Stats

	// Total render time for entire frame.
	RenderTime time.Duration
}
