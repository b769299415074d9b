package renderer

import (
	"context"
	"sort"
	"time"

	"github.com/achilleasa/octocull/component"
	"github.com/achilleasa/octocull/log"
	"github.com/achilleasa/octocull/scene"
	"github.com/achilleasa/octocull/types"
)

// DrawItem is a surface selected for drawing.
type DrawItem struct {
	Node    *scene.Node
	Surface scene.GeometryProvider

	// Distance from the camera eye to the node bounding box.
	Distance float32
}

// Headless advances the scene one tick per frame and builds the list of
// surfaces a GPU backend would draw, without drawing anything.
type Headless struct {
	logger log.Logger

	root   *scene.Node
	camera *scene.Node
	sm     *scene.SceneManager
	opts   Options

	drawList []DrawItem
	stats    FrameStats
}

// Create a headless renderer for the scene rooted at root. The camera node
// must carry a camera component and belong to the scene.
func NewHeadless(root, camera *scene.Node, opts Options) (*Headless, error) {
	if root == nil {
		return nil, ErrSceneNotDefined
	}
	sm, ok := scene.ComponentOf[*scene.SceneManager](root)
	if !ok {
		return nil, ErrSceneNotDefined
	}
	if camera == nil || !scene.HasComponentOf[*component.Camera](camera) {
		return nil, ErrCameraNotDefined
	}

	r := &Headless{
		logger: log.New("headless renderer"),
		root:   root,
		camera: camera,
		sm:     sm,
		opts:   opts,
	}
	if err := r.checkCamera(); err != nil {
		return nil, err
	}

	r.logger.Noticef("rendering %dx%d frames; layout mask: %v", opts.FrameW, opts.FrameH, opts.layoutMask())
	return r, nil
}

// Render frame.
func (r *Headless) Render() error {
	if err := r.checkCamera(); err != nil {
		return err
	}

	start := time.Now()
	r.sm.NextFrame()

	eye := r.eyePosition()
	mask := r.opts.layoutMask()
	r.drawList = r.drawList[:0]
	r.stats = FrameStats{Frame: r.sm.Frame()}

	for _, n := range r.root.Descendants(true, nil) {
		for _, surface := range scene.ComponentsOf[scene.GeometryProvider](n) {
			if !n.Layout().Has(mask) {
				r.stats.Culled++
				continue
			}

			item := DrawItem{Node: n, Surface: surface}
			if bb, ok := scene.ComponentOf[*component.BoundingBox](n); ok {
				box := bb.Box()
				item.Distance = box.Distance(eye)
			}
			r.drawList = append(r.drawList, item)

			r.stats.Drawn++
			if g := surface.Geometry(); g != nil {
				r.stats.Triangles += g.TriangleCount()
			}
		}
	}

	if r.opts.SortFrontToBack {
		sort.SliceStable(r.drawList, func(i, j int) bool {
			return r.drawList[i].Distance < r.drawList[j].Distance
		})
	}

	if culling, ok := scene.ComponentOf[*component.Culling](r.camera); ok {
		r.stats.Octree = culling.Stats()
	}
	r.stats.RenderTime = time.Since(start)
	r.logger.Debugf("frame %d: drew %d surface(s), culled %d", r.stats.Frame, r.stats.Drawn, r.stats.Culled)
	return nil
}

// Render frames until ctx is cancelled or count frames have been rendered.
func (r *Headless) RenderFrames(ctx context.Context, count int, onFrame func(FrameStats)) error {
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		default:
		}

		if err := r.Render(); err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(r.stats)
		}
	}
	return nil
}

// DrawList returns the surfaces selected during the last frame.
func (r *Headless) DrawList() []DrawItem {
	return r.drawList
}

// Get render statistics.
func (r *Headless) Stats() FrameStats {
	return r.stats
}

func (r *Headless) Close() {
	r.drawList = nil
}

func (r *Headless) checkCamera() error {
	if r.camera.Root() != r.root {
		return ErrCameraNotInScene
	}
	return nil
}

func (r *Headless) eyePosition() types.Vec3 {
	if cam, ok := scene.ComponentOf[*component.Camera](r.camera); ok {
		return cam.Position()
	}
	return types.Vec3{}
}
