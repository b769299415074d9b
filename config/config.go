// Package config loads the culling and rendering settings of the octocull
// tool from YAML files.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/achilleasa/octocull/component"
	"github.com/achilleasa/octocull/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The deepest octree level a configuration may request.
const MaxOctreeDepth uint = 16

var (
	ErrInvalidWorldExtent = errors.New("config: world extent must be positive")
	ErrInvalidMaxDepth    = errors.New("config: max depth exceeds the supported octree depth")
	ErrEmptyBindProperty  = errors.New("config: bind property must not be empty")
	ErrInvalidFrameSize   = errors.New("config: frame width and height must be positive")
	ErrInvalidFOV         = errors.New("config: camera fov must be in the (0, 180) range")
	ErrInvalidClipPlanes  = errors.New("config: camera near plane must be positive and closer than the far plane")
)

type Culling struct {
	WorldExtent  float32 `yaml:"world_extent"`
	MaxDepth     uint    `yaml:"max_depth"`
	BindProperty string  `yaml:"bind_property"`
}

type Frame struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

type Camera struct {
	FOV  float32 `yaml:"fov"`
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

type Config struct {
	Culling  Culling `yaml:"culling"`
	Frame    Frame   `yaml:"frame"`
	Camera   Camera  `yaml:"camera"`
	LogLevel string  `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Culling: Culling{
			WorldExtent:  component.DefaultWorldExtent,
			MaxDepth:     component.DefaultMaxDepth,
			BindProperty: component.DefaultBindProperty,
		},
		Frame: Frame{
			Width:  512,
			Height: 512,
		},
		Camera: Camera{
			FOV:  45,
			Near: 0.1,
			Far:  1000,
		},
		LogLevel: log.Notice.String(),
	}
}

// Load reads a YAML file on top of the default configuration.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: could not open file")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config: invalid file %q", path)
	}
	return cfg, nil
}

// Decode parses a YAML document on top of the default configuration and
// validates the result.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "config: read failed")
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) != 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err != nil {
			return nil, errors.Wrap(err, "config: could not parse yaml")
		}
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch {
	case c.Culling.WorldExtent <= 0:
		return ErrInvalidWorldExtent
	case c.Culling.MaxDepth > MaxOctreeDepth:
		return ErrInvalidMaxDepth
	case c.Culling.BindProperty == "":
		return ErrEmptyBindProperty
	case c.Frame.Width == 0 || c.Frame.Height == 0:
		return ErrInvalidFrameSize
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return ErrInvalidFOV
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return ErrInvalidClipPlanes
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// Encode writes the configuration as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "config: could not encode yaml")
	}
	return enc.Close()
}

// CullingOptions converts the culling settings to component options.
func (c *Config) CullingOptions() []component.CullingOption {
	return []component.CullingOption{
		component.WithWorldExtent(c.Culling.WorldExtent),
		component.WithMaxDepth(c.Culling.MaxDepth),
		component.WithBindProperty(c.Culling.BindProperty),
	}
}

// Aspect returns the frame aspect ratio.
func (c *Config) Aspect() float32 {
	return float32(c.Frame.Width) / float32(c.Frame.Height)
}
