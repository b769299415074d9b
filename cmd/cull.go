package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/octocull/asset/compiler"
	"github.com/achilleasa/octocull/renderer"
	"github.com/achilleasa/octocull/scene"
	"github.com/chewxy/math32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render frames of a scene and report which instances survive culling.
func Cull(ctx *cli.Context) error {
	cfg, graph, err := setup(ctx)
	if err != nil {
		return err
	}

	frames := ctx.Int("frames")
	if frames < 1 {
		frames = 1
	}
	orbit := float32(ctx.Float64("orbit")) * math32.Pi / 180.0

	r, err := renderer.NewHeadless(graph.Root, graph.Camera, renderer.Options{
		FrameW:          cfg.Frame.Width,
		FrameH:          cfg.Frame.Height,
		SortFrontToBack: true,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rendered := 0
	err = r.RenderFrames(runCtx, frames, func(stats renderer.FrameStats) {
		rendered++
		logger.Infof("frame %d: drawn %d, culled %d, octree: %v", stats.Frame, stats.Drawn, stats.Culled, stats.Octree)
		if orbit != 0 && rendered < frames {
			graph.CameraComponent.Orbit(orbit)
		}
	})
	if err != nil {
		return err
	}

	logger.Noticef("visibility after %d frame(s)\n%s", rendered, visibilityTable(graph))
	logger.Noticef("frame statistics\n%s", frameStatsTable(r.Stats()))
	return nil
}

func visibilityTable(graph *compiler.Graph) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Node", "Mesh", "Visible", "Octree depth", "Layout"})

	tree := graph.Culling.Octree()
	visible := 0
	for _, n := range graph.Instances {
		mesh := ""
		if surface, ok := scene.ComponentOf[*scene.Surface](n); ok {
			mesh = surface.Name()
		}

		depth := "-"
		if d, tracked := tree.Depth(n); tracked {
			depth = fmt.Sprintf("%d", d)
		}

		isVisible := n.Layout().Has(scene.LayoutDefault)
		if isVisible {
			visible++
		}
		table.Append([]string{
			n.Name(),
			mesh,
			fmt.Sprintf("%t", isVisible),
			depth,
			n.Layout().String(),
		})
	}
	table.SetFooter([]string{"", "", "VISIBLE", fmt.Sprintf("%d/%d", visible, len(graph.Instances)), ""})

	table.Render()
	return buf.String()
}

func frameStatsTable(stats renderer.FrameStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Drawn", "Culled", "Triangles", "Nodes tested", "Entities tested", "Subtrees culled", "Planes tested", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.Frame),
		fmt.Sprintf("%d", stats.Drawn),
		fmt.Sprintf("%d", stats.Culled),
		fmt.Sprintf("%d", stats.Triangles),
		fmt.Sprintf("%d", stats.Octree.NodesTested),
		fmt.Sprintf("%d", stats.Octree.EntitiesTested),
		fmt.Sprintf("%d", stats.Octree.SubtreesCulled),
		fmt.Sprintf("%d", stats.Octree.PlanesTested),
		stats.RenderTime.String(),
	})

	table.Render()
	return buf.String()
}
