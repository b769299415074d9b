package scene

import "github.com/achilleasa/octocull/types"

// The name of the vertex attribute holding vertex positions.
const AttributePosition = "position"

// VertexAttribute describes a named attribute inside an interleaved vertex
// buffer. Size and Offset are expressed in float32 components.
type VertexAttribute struct {
	Name   string
	Size   int
	Offset int
}

// Geometry stores an interleaved vertex buffer and an optional triangle
// index list.
type Geometry struct {
	data    []float32
	stride  int
	attrs   []VertexAttribute
	indices []uint32
}

// Create a geometry from an interleaved buffer. The vertex stride is the
// end of the furthest attribute.
func NewGeometry(data []float32, attrs ...VertexAttribute) *Geometry {
	stride := 0
	for _, attr := range attrs {
		if end := attr.Offset + attr.Size; end > stride {
			stride = end
		}
	}
	return &Geometry{
		data:   data,
		stride: stride,
		attrs:  attrs,
	}
}

// Create a geometry with a single position attribute.
func NewPositionGeometry(positions []types.Vec3) *Geometry {
	data := make([]float32, 0, 3*len(positions))
	for _, p := range positions {
		data = append(data, p[0], p[1], p[2])
	}
	return NewGeometry(data, VertexAttribute{Name: AttributePosition, Size: 3})
}

func (g *Geometry) Stride() int {
	return g.stride
}

func (g *Geometry) Data() []float32 {
	return g.data
}

func (g *Geometry) VertexCount() int {
	if g.stride == 0 {
		return 0
	}
	return len(g.data) / g.stride
}

// Attribute looks up a vertex attribute by name.
func (g *Geometry) Attribute(name string) (VertexAttribute, bool) {
	for _, attr := range g.attrs {
		if attr.Name == name {
			return attr, true
		}
	}
	return VertexAttribute{}, false
}

// Vec3 reads up to 3 components of attr for the vertex at index. Missing
// components are zero.
func (g *Geometry) Vec3(attr VertexAttribute, index int) types.Vec3 {
	var out types.Vec3
	base := index*g.stride + attr.Offset
	for i := 0; i < attr.Size && i < 3; i++ {
		out[i] = g.data[base+i]
	}
	return out
}

func (g *Geometry) SetIndices(indices []uint32) {
	g.indices = indices
}

func (g *Geometry) Indices() []uint32 {
	return g.indices
}

// TriangleCount returns the number of indexed triangles or, for
// non-indexed geometry, the number of vertex triplets.
func (g *Geometry) TriangleCount() int {
	if len(g.indices) != 0 {
		return len(g.indices) / 3
	}
	return g.VertexCount() / 3
}
