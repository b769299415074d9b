package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Culling.WorldExtent != 50 || cfg.Culling.MaxDepth != 7 {
		t.Fatalf("expected default world extent 50 and max depth 7; got %f and %d", cfg.Culling.WorldExtent, cfg.Culling.MaxDepth)
	}
	if cfg.Culling.BindProperty != "worldToScreenMatrix" {
		t.Fatalf("expected default bind property to be worldToScreenMatrix; got %q", cfg.Culling.BindProperty)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(cfg.CullingOptions()) != 3 {
		t.Fatal("expected 3 culling options")
	}
	if cfg.Aspect() != 1 {
		t.Fatalf("expected aspect 1; got %f", cfg.Aspect())
	}
}

func TestDecode(t *testing.T) {
	doc := `
culling:
  world_extent: 200
  max_depth: 9
frame:
  width: 800
  height: 400
log_level: debug
`
	cfg, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Culling.WorldExtent != 200 || cfg.Culling.MaxDepth != 9 {
		t.Fatalf("expected world extent 200 and max depth 9; got %f and %d", cfg.Culling.WorldExtent, cfg.Culling.MaxDepth)
	}
	if cfg.Culling.BindProperty != "worldToScreenMatrix" || cfg.Camera.FOV != 45 {
		t.Fatal("expected omitted values to keep their defaults")
	}
	if cfg.Aspect() != 2 {
		t.Fatalf("expected aspect 2; got %f", cfg.Aspect())
	}

	if cfg, err = Decode(strings.NewReader("  \n")); err != nil || cfg.Culling.WorldExtent != 50 {
		t.Fatalf("expected empty document to yield the defaults; got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	specs := []struct {
		doc    string
		expErr error
	}{
		{"culling:\n  world_extent: -1\n", ErrInvalidWorldExtent},
		{"culling:\n  max_depth: 17\n", ErrInvalidMaxDepth},
		{"culling:\n  bind_property: \"\"\n", ErrEmptyBindProperty},
		{"frame:\n  width: 0\n", ErrInvalidFrameSize},
		{"camera:\n  fov: 180\n", ErrInvalidFOV},
		{"camera:\n  near: 0\n", ErrInvalidClipPlanes},
		{"camera:\n  near: -1\n", ErrInvalidClipPlanes},
		{"camera:\n  near: 10\n  far: 10\n", ErrInvalidClipPlanes},
		{"camera:\n  near: 10\n  far: 5\n", ErrInvalidClipPlanes},
	}
	for specIndex, spec := range specs {
		_, err := Decode(strings.NewReader(spec.doc))
		if errors.Cause(err) != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
	}

	for _, doc := range []string{"log_level: loud\n", "unknown_key: 1\n", "culling: [1, 2]\n"} {
		if _, err := Decode(strings.NewReader(doc)); err == nil {
			t.Errorf("expected document %q to be rejected", doc)
		}
	}
}

func TestLoadAndEncode(t *testing.T) {
	cfg := Default()
	cfg.Culling.MaxDepth = 3

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "octocull.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Fatalf("expected loaded config %+v; got %+v", cfg, loaded)
	}

	if _, err = Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}
