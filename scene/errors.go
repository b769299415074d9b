package scene

import "errors"

var (
	ErrCycle              = errors.New("scene: a node cannot be added to its own subtree")
	ErrNotChild           = errors.New("scene: node is not a child of this node")
	ErrComponentAttached  = errors.New("scene: component already attached to a node")
	ErrComponentNotFound  = errors.New("scene: component not attached to this node")
	ErrNotRoot            = errors.New("scene: scene manager must be attached to a root node")
	ErrDuplicateScene     = errors.New("scene: node already has a scene manager")
	ErrDuplicateTransform = errors.New("scene: node already has a transform")
)
