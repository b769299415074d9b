package scene

import "github.com/achilleasa/octocull/types"

// Well-known property names.
const (
	PropertyModelToWorld = "modelToWorldMatrix"
)

// PropertyFunc is invoked after a property value changes.
type PropertyFunc func(store *Store, name string)

// Store holds the named properties of a node.
type Store struct {
	node      *Node
	props     map[string]interface{}
	listeners map[string]*Signal[PropertyFunc]
}

func newStore(node *Node) *Store {
	return &Store{
		node:      node,
		props:     make(map[string]interface{}),
		listeners: make(map[string]*Signal[PropertyFunc]),
	}
}

// Node returns the node owning this store.
func (s *Store) Node() *Node {
	return s.node
}

// Has returns true if a property is defined.
func (s *Store) Has(name string) bool {
	_, exists := s.props[name]
	return exists
}

// Get returns a property value.
func (s *Store) Get(name string) (interface{}, bool) {
	v, exists := s.props[name]
	return v, exists
}

// Mat4 returns a matrix property.
func (s *Store) Mat4(name string) (types.Mat4, bool) {
	v, exists := s.props[name]
	if !exists {
		return types.Mat4{}, false
	}
	m, ok := v.(types.Mat4)
	return m, ok
}

// Set defines or updates a property and notifies its listeners.
func (s *Store) Set(name string, value interface{}) {
	s.props[name] = value
	s.emit(name)
}

// Unset removes a property and notifies its listeners.
func (s *Store) Unset(name string) {
	if _, exists := s.props[name]; !exists {
		return
	}
	delete(s.props, name)
	s.emit(name)
}

// OnPropertyChanged registers fn to be called whenever the named property
// is set or removed.
func (s *Store) OnPropertyChanged(name string, fn PropertyFunc) Cancel {
	sig, exists := s.listeners[name]
	if !exists {
		sig = &Signal[PropertyFunc]{}
		s.listeners[name] = sig
	}
	return sig.Connect(fn)
}

func (s *Store) emit(name string) {
	sig, exists := s.listeners[name]
	if !exists {
		return
	}
	sig.Emit(func(fn PropertyFunc) { fn(s, name) })
}
