package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/export"
	"github.com/chazu/timberframe/pkg/part"
)

// writeConfig writes a small-mesh config so CLI runs stay quick.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "timberframe.hcl")
	src := `
log_level = "error"

assets {
  mesh_cells = 16
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		outputPath, outputFormat = "", ""
		width, height, depth = 5, 3, 4
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildYAML(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.yaml")

	stdout, err := execute(t, "build", "-c", writeConfig(t, dir), "-W", "6", "-H", "3", "-D", "4", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "6x3x4")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	l, err := export.ReadYAML(f)
	require.NoError(t, err)
	assert.Len(t, l.Parts, 27)
	assert.Equal(t, 6.0, l.Dimensions.Width)
}

func TestBuildSnapsFlagDimensions(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.yaml")

	_, err := execute(t, "build", "-c", writeConfig(t, dir), "-W", "5.2", "-H", "3.3", "-D", "4.8", "-o", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	l, err := export.ReadYAML(f)
	require.NoError(t, err)
	assert.Equal(t, 5.0, l.Dimensions.Width)
	assert.Equal(t, 3.5, l.Dimensions.Height)
	assert.Equal(t, 5.0, l.Dimensions.Depth)
}

func TestWriteBuilding(t *testing.T) {
	b := part.NewBuilding(part.Dimensions{Width: 5, Height: 3, Depth: 4})
	err := writeBuilding(filepath.Join(t.TempDir(), "missing", "frame.yaml"), "yaml", b, nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "frame.yaml")
	require.NoError(t, writeBuilding(path, "yaml", b, nil))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBuildScriptWritesOneFilePerBuilding(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "pair.lisp")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
(building "shed" :width 2 :height 2 :depth 2)
(building "barn" :width 8 :height 4 :depth 6)
`), 0o644))

	out := filepath.Join(dir, "frame.dxf")
	_, err := execute(t, "build", scriptPath, "-c", writeConfig(t, dir), "-o", out)
	require.NoError(t, err)

	for _, name := range []string{"frame-shed.dxf", "frame-barn.dxf"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestBuildRejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "build", "-c", writeConfig(t, dir), "-W", "50", "-o", filepath.Join(dir, "x.yaml"))
	assert.ErrorContains(t, err, "width 50 outside")
}

func TestBuildUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "build", "-c", writeConfig(t, dir), "-o", filepath.Join(dir, "x.stl"))
	assert.ErrorContains(t, err, `unknown output format "stl"`)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	stdout, err := execute(t, "inspect", "-c", writeConfig(t, dir))
	require.NoError(t, err)
	assert.Contains(t, stdout, "parts:    27")
	assert.Contains(t, stdout, "corner-beam")
	assert.Contains(t, stdout, "envelope: 5.300 x ")
	assert.Contains(t, stdout, "check:    ok")
}

func TestInspectDimensionFlags(t *testing.T) {
	dir := t.TempDir()
	stdout, err := execute(t, "inspect", "-c", writeConfig(t, dir), "-W", "6", "-D", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "envelope: 6.300 x ")
	assert.Contains(t, stdout, "check:    ok")
}

func TestOpenStoreSelectsFileStore(t *testing.T) {
	c := config.Default()
	c.Assets.Dir = t.TempDir()
	store, err := openStore(c, nil)
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestSuffixPath(t *testing.T) {
	tests := []struct {
		path, name, want string
	}{
		{"out/frame.pdf", "shed", "out/frame-shed.pdf"},
		{"frame", "barn", "frame-barn"},
		{"a.b/frame.tar.yaml", "x", "a.b/frame.tar-x.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, suffixPath(tt.path, tt.name))
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range formats {
		assert.True(t, validFormat(f), f)
	}
	assert.False(t, validFormat("stl"))
	assert.False(t, validFormat(""))
}
