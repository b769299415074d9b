package input

import (
	"github.com/achilleasa/octocull/shape"
	"github.com/achilleasa/octocull/types"
)

// A mesh is an indexed triangle list.
type Mesh struct {
	Name     string
	Vertices []types.Vec3
	Indices  []uint32

	bbox            shape.Box
	bboxNeedsUpdate bool
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Vertices:        make([]types.Vec3, 0),
		Indices:         make([]uint32, 0),
		bboxNeedsUpdate: true,
	}
}

// Mark the bbox of this mesh as dirty.
func (m *Mesh) MarkBBoxDirty() {
	m.bboxNeedsUpdate = true
}

// Get mesh bounding box.
func (m *Mesh) BBox() shape.Box {
	if m.bboxNeedsUpdate {
		m.bbox = shape.EmptyBox()
		for _, v := range m.Vertices {
			m.bbox = m.bbox.Extend(v)
		}
		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// Get the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// A mesh instance applies a transformation to a particular Mesh.
type MeshInstance struct {
	Name      string
	MeshIndex uint32
	Transform types.Mat4

	bbox shape.Box
}

// Set the mesh instance AABB.
func (mi *MeshInstance) SetBBox(bbox shape.Box) {
	mi.bbox = bbox
}

// Get AABB.
func (mi *MeshInstance) BBox() shape.Box {
	return mi.bbox
}

// Get AABB center.
func (mi *MeshInstance) Center() types.Vec3 {
	return mi.bbox.Center()
}

// Camera settings. A zero FOV lets the scene compiler pick one.
type Camera struct {
	FOV  float32
	Eye  types.Vec3
	Look types.Vec3
	Up   types.Vec3
}

// The scene contains all elements parsed by a scene reader.
type Scene struct {
	Meshes        []*Mesh
	MeshInstances []*MeshInstance
	Camera        *Camera

	// Names of meshes whose instances are excluded from culling.
	IgnoreCulling map[string]bool
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes:        make([]*Mesh, 0),
		MeshInstances: make([]*MeshInstance, 0),
		Camera: &Camera{
			Eye:  types.Vec3{0, 0, 0},
			Look: types.Vec3{0, 0, -1},
			Up:   types.Vec3{0, 1, 0},
		},
		IgnoreCulling: make(map[string]bool),
	}
}

// Lookup a mesh index by name.
func (sc *Scene) MeshIndex(name string) (int, bool) {
	for index, mesh := range sc.Meshes {
		if mesh.Name == name {
			return index, true
		}
	}
	return -1, false
}

// Get the total number of triangles referenced by mesh instances.
func (sc *Scene) TriangleCount() int {
	total := 0
	for _, mi := range sc.MeshInstances {
		total += sc.Meshes[mi.MeshIndex].TriangleCount()
	}
	return total
}
