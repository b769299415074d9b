package cmd

import (
	"github.com/achilleasa/octocull/asset/compiler"
	"github.com/achilleasa/octocull/asset/reader"
	"github.com/achilleasa/octocull/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Flags shared by all scene commands.
var sceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "load settings from a YAML file",
	},
	cli.Float64Flag{
		Name:  "world-extent",
		Usage: "half size of the octree root node (overrides config)",
	},
	cli.UintFlag{
		Name:  "max-depth",
		Usage: "max octree depth (overrides config)",
	},
	cli.StringFlag{
		Name:  "bind-property",
		Usage: "camera matrix property that drives the culling frustum (overrides config)",
	},
	cli.Float64Flag{
		Name:  "fov",
		Usage: "camera fov in degrees for scenes that do not define one (overrides config)",
	},
}

// Load the configuration file (if any) and apply flag overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet("world-extent") {
		cfg.Culling.WorldExtent = float32(ctx.Float64("world-extent"))
	}
	if ctx.IsSet("max-depth") {
		cfg.Culling.MaxDepth = ctx.Uint("max-depth")
	}
	if ctx.IsSet("bind-property") {
		cfg.Culling.BindProperty = ctx.String("bind-property")
	}
	if ctx.IsSet("fov") {
		cfg.Camera.FOV = float32(ctx.Float64("fov"))
	}
	if ctx.IsSet("width") {
		cfg.Frame.Width = uint32(ctx.Uint("width"))
	}
	if ctx.IsSet("height") {
		cfg.Frame.Height = uint32(ctx.Uint("height"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse the scene file argument and compile it into a scene graph.
func loadScene(ctx *cli.Context, cfg *config.Config) (*compiler.Graph, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}
	return loadSceneFile(ctx.Args().First(), cfg)
}

func loadSceneFile(sceneFile string, cfg *config.Config) (*compiler.Graph, error) {
	logger.Noticef("loading scene: %s", sceneFile)
	raw, err := reader.ReadScene(sceneFile)
	if err != nil {
		return nil, err
	}

	return compiler.Compile(raw, compiler.Options{
		FOV:     cfg.Camera.FOV,
		Aspect:  cfg.Aspect(),
		Near:    cfg.Camera.Near,
		Far:     cfg.Camera.Far,
		Culling: cfg.CullingOptions(),
	})
}

// Load the configuration and the scene named by the command arguments.
func setup(ctx *cli.Context) (*config.Config, *compiler.Graph, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.Errorf("rejected configuration: %v", err)
		return nil, nil, err
	}
	setupLogging(ctx, cfg)

	graph, err := loadScene(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, graph, nil
}
