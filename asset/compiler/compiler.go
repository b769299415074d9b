package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/octocull/asset/input"
	"github.com/achilleasa/octocull/component"
	"github.com/achilleasa/octocull/log"
	"github.com/achilleasa/octocull/scene"
	"github.com/pkg/errors"
)

const (
	// Camera node name.
	CameraNodeName = "camera"

	DefaultFOV float32 = 45
)

// Options control the camera projection and the culling component attached
// to the compiled camera.
type Options struct {
	// Used when the parsed scene does not define a camera fov. Zero
	// selects DefaultFOV.
	FOV float32

	Aspect float32
	Near   float32
	Far    float32

	Culling []component.CullingOption
}

// Graph is a compiled scene.
type Graph struct {
	Root   *scene.Node
	Camera *scene.Node

	// Components attached to the camera node.
	CameraComponent *component.Camera
	Culling         *component.Culling

	// One node per mesh instance, in definition order.
	Instances []*scene.Node
}

type sceneCompiler struct {
	parsedScene *input.Scene
	graph       *Graph
	logger      log.Logger

	// Geometries are shared by all instances of a mesh.
	meshGeometry []*scene.Geometry
}

// Compile a scene representation parsed by a scene reader into a live scene
// graph with a culling camera.
func Compile(parsedScene *input.Scene, opts Options) (*Graph, error) {
	if parsedScene == nil {
		return nil, errors.New("compiler: no scene defined")
	}

	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		graph:       &Graph{Root: scene.NewNode("root")},
		logger:      log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	if err := compiler.graph.Root.AddComponent(scene.NewSceneManager()); err != nil {
		return nil, err
	}

	compiler.createGeometry()

	if err := compiler.createInstances(); err != nil {
		return nil, err
	}

	if err := compiler.setupCamera(opts); err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.graph, nil
}

func (sc *sceneCompiler) createGeometry() {
	sc.meshGeometry = make([]*scene.Geometry, len(sc.parsedScene.Meshes))
	for index, mesh := range sc.parsedScene.Meshes {
		g := scene.NewPositionGeometry(mesh.Vertices)
		g.SetIndices(mesh.Indices)
		sc.meshGeometry[index] = g
	}
}

// Create a node for each mesh instance. Each node gets a surface sharing
// the mesh geometry, a transform and a bounding box.
func (sc *sceneCompiler) createInstances() error {
	start := time.Now()
	sc.logger.Noticef("creating %d instance node(s)", len(sc.parsedScene.MeshInstances))

	ignored := 0
	for _, inst := range sc.parsedScene.MeshInstances {
		if int(inst.MeshIndex) >= len(sc.parsedScene.Meshes) {
			return fmt.Errorf("compiler: instance %q references unknown mesh %d", inst.Name, inst.MeshIndex)
		}
		mesh := sc.parsedScene.Meshes[inst.MeshIndex]

		node := scene.NewNode(inst.Name)
		if sc.parsedScene.IgnoreCulling[mesh.Name] {
			node.SetLayout(node.Layout() | scene.LayoutIgnoreCulling)
			ignored++
		}

		for _, c := range []scene.Component{
			scene.NewSurface(mesh.Name, sc.meshGeometry[inst.MeshIndex]),
			scene.NewTransform(inst.Transform),
			component.NewBoundingBox(),
		} {
			if err := node.AddComponent(c); err != nil {
				return errors.Wrapf(err, "compiler: instance %q", inst.Name)
			}
		}

		if err := sc.graph.Root.AddChild(node); err != nil {
			return err
		}
		sc.graph.Instances = append(sc.graph.Instances, node)
	}

	sc.logger.Infof(
		"created instance nodes in %d ms; %d node(s) excluded from culling",
		time.Since(start).Nanoseconds()/1e6, ignored,
	)
	return nil
}

// The camera is added last so the culling component starts tracking a
// fully populated scene.
func (sc *sceneCompiler) setupCamera(opts Options) error {
	cam := sc.parsedScene.Camera
	fov := cam.FOV
	if fov == 0 {
		fov = opts.FOV
	}
	if fov == 0 {
		fov = DefaultFOV
	}
	camera := component.NewCamera(fov, opts.Aspect, opts.Near, opts.Far)
	camera.LookAt(cam.Eye, cam.Look, cam.Up)

	node := scene.NewNode(CameraNodeName)
	if err := node.AddComponent(camera); err != nil {
		return err
	}

	culling := component.NewCulling(opts.Culling...)
	if err := node.AddComponent(culling); err != nil {
		return errors.Wrap(err, "compiler: could not attach culling to camera")
	}

	if err := sc.graph.Root.AddChild(node); err != nil {
		return err
	}

	sc.graph.Camera = node
	sc.graph.CameraComponent = camera
	sc.graph.Culling = culling
	sc.logger.Infof("camera at %v looking at %v; culling %v", cam.Eye, cam.Look, culling.State())
	return nil
}
