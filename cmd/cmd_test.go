package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/octocull/config"
	"github.com/achilleasa/octocull/scene"
)

const testScene = `
v -0.5 -0.5 -0.5
v 0.5 -0.5 -0.5
v 0.5 0.5 -0.5
v -0.5 0.5 -0.5
o box
f 1 2 3 4
instance box 0 0 0 0 0 0 1 1 1
instance box 0 0 -40 0 0 0 1 1 1
instance box 20 0 0 0 0 0 1 1 1
camera_eye 0 0 10
camera_look 0 0 0
`

func writeTestFiles(t *testing.T) (string, string) {
	dir := t.TempDir()
	sceneFile := filepath.Join(dir, "scene.obj")
	if err := os.WriteFile(sceneFile, []byte(testScene), 0644); err != nil {
		t.Fatal(err)
	}
	cfgFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("camera:\n  far: 20\nlog_level: warning\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return sceneFile, cfgFile
}

func TestCullCommand(t *testing.T) {
	sceneFile, cfgFile := writeTestFiles(t)

	args := []string{"octocull", "cull", "--config", cfgFile, "--frames", "3", "--orbit", "10", sceneFile}
	if err := NewApp().Run(args); err != nil {
		t.Fatal(err)
	}
}

func TestInfoCommand(t *testing.T) {
	sceneFile, cfgFile := writeTestFiles(t)

	args := []string{"octocull", "info", "--config", cfgFile, "--max-depth", "4", sceneFile}
	if err := NewApp().Run(args); err != nil {
		t.Fatal(err)
	}
}

func TestCommandErrors(t *testing.T) {
	sceneFile, cfgFile := writeTestFiles(t)

	specs := []struct {
		args   []string
		expErr string
	}{
		{[]string{"octocull", "cull"}, "missing scene file argument"},
		{[]string{"octocull", "info", "--world-extent=-1", sceneFile}, config.ErrInvalidWorldExtent.Error()},
		{[]string{"octocull", "info", "--bind-property", "missing", "--config", cfgFile, sceneFile}, "camera"},
		{[]string{"octocull", "cull", "--config", filepath.Join(filepath.Dir(cfgFile), "missing.yaml"), sceneFile}, "could not open file"},
		{[]string{"octocull", "info", filepath.Join(filepath.Dir(sceneFile), "missing.obj")}, "resource"},
	}

	for index, spec := range specs {
		err := NewApp().Run(spec.args)
		if err == nil {
			t.Errorf("[spec %d] expected an error", index)
			continue
		}
		if !strings.Contains(err.Error(), spec.expErr) {
			t.Errorf("[spec %d] expected error to contain %q; got %v", index, spec.expErr, err)
		}
	}
}

func TestTables(t *testing.T) {
	sceneFile, _ := writeTestFiles(t)

	cfg := config.Default()
	cfg.Camera.Far = 20
	graph, err := loadSceneFile(sceneFile, cfg)
	if err != nil {
		t.Fatal(err)
	}

	sm, _ := scene.SceneManagerOf(graph.Root)
	sm.NextFrame()

	visibility := visibilityTable(graph)
	for _, exp := range []string{"box#0", "box#1", "box#2", "VISIBLE", "1/3"} {
		if !strings.Contains(visibility, exp) {
			t.Fatalf("expected visibility table to contain %q; got\n%s", exp, visibility)
		}
	}

	occupancy := occupancyTable(graph)
	if !strings.Contains(occupancy, "TOTAL") {
		t.Fatalf("expected occupancy table to contain a total row; got\n%s", occupancy)
	}
}
