package reader

import (
	"strings"

	"github.com/achilleasa/octocull/asset"
	"github.com/achilleasa/octocull/asset/input"
	"github.com/pkg/errors"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// Read scene from a local file or an http(s) URL.
func ReadScene(filename string) (*input.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".obj") {
		reader = newWavefrontReader()
	} else {
		return nil, errors.Errorf("readScene: unsupported file format %q", filename)
	}
	return reader.Read(res)
}
