package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/octocull/asset/compiler"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display the octree occupancy of a scene.
func ShowOctreeInfo(ctx *cli.Context) error {
	_, graph, err := setup(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("octree occupancy\n%s", occupancyTable(graph))
	return nil
}

func occupancyTable(graph *compiler.Graph) string {
	tree := graph.Culling.Octree()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Depth", "Edge length", "Entities"})
	for depth, count := range tree.Occupancy() {
		table.Append([]string{
			fmt.Sprintf("%d", depth),
			fmt.Sprintf("%.3f", tree.EdgeLength(uint(depth))),
			fmt.Sprintf("%d", count),
		})
	}
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%d nodes", tree.NodeCount()), fmt.Sprintf("%d", tree.Len())})

	table.Render()
	return buf.String()
}
