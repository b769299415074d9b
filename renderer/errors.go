package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrCameraNotInScene = errors.New("renderer: camera is not part of the rendered scene")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
