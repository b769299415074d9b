package cmd

import "github.com/urfave/cli"

// Create the octocull cli application.
func NewApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "octocull"
	app.Usage = "octree frustum culling for scene graphs"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "cull",
			Usage: "render headless frames and report per-instance visibility",
			Description: `
Parse a scene definition from a wavefront obj file, build a scene graph with
one node per mesh instance and attach a camera with an octree culling
component. The scene is then rendered for the requested number of frames,
optionally orbiting the camera around its focus point between frames.`,
			ArgsUsage: "scene_file.obj",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames, f",
					Value: 1,
					Usage: "number of frames to render",
				},
				cli.Float64Flag{
					Name:  "orbit",
					Value: 0,
					Usage: "degrees to orbit the camera around its focus point between frames",
				},
				cli.UintFlag{
					Name:  "width",
					Usage: "frame width (overrides config)",
				},
				cli.UintFlag{
					Name:  "height",
					Usage: "frame height (overrides config)",
				},
			}, sceneFlags...),
			Action: Cull,
		},
		{
			Name:      "info",
			Usage:     "display octree occupancy per depth",
			ArgsUsage: "scene_file.obj",
			Flags:     sceneFlags,
			Action:    ShowOctreeInfo,
		},
	}

	return app
}
