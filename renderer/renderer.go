package renderer

import "context"

type Renderer interface {
	// Render frame.
	Render() error

	// Render frames until ctx is cancelled or count frames have been
	// rendered. Each completed frame is reported to onFrame.
	RenderFrames(ctx context.Context, count int, onFrame func(FrameStats)) error

	// Release renderer resources.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
