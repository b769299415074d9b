package scene

// GeometryProvider is implemented by components that carry geometry.
type GeometryProvider interface {
	Component
	Geometry() *Geometry
}

// Surface is a drawable component binding a geometry to a node.
type Surface struct {
	BaseComponent
	name     string
	geometry *Geometry
}

func NewSurface(name string, geometry *Geometry) *Surface {
	return &Surface{
		name:     name,
		geometry: geometry,
	}
}

func (s *Surface) Name() string {
	return s.name
}

func (s *Surface) Geometry() *Geometry {
	return s.geometry
}
