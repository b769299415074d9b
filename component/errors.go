package component

import "errors"

var (
	ErrDuplicateCamera      = errors.New("component: node already has a camera")
	ErrDuplicateBoundingBox = errors.New("component: node already has a bounding box")
	ErrDuplicateCulling     = errors.New("component: camera already has a culling component")
	ErrNoCamera             = errors.New("component: culling requires a node publishing the bound view matrix property")
)
