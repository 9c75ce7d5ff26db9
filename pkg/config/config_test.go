package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/timberframe/pkg/part"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Limits{Min: 1, Max: 20, Step: 0.5}, cfg.Limits)
	assert.Equal(t, 0.3, cfg.Joinery.LodgeReveal)
	assert.Equal(t, 0.01, cfg.Joinery.LodgePadding)
	assert.True(t, cfg.Assets.Concurrent)
	assert.Equal(t, part.DefaultLibrary(), cfg.Library)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timberframe.hcl")
	src := `
log_level = "debug"

limits {
  max = 12
}

joinery {
  reveal = 0.5
}

assets {
  concurrent = false
  dir        = "/srv/models"
}

part "roof-beam" {
  geometry = "models/oak-beam.obj"
  material = "models/oak-beam.mtl"
}

part "floor" {
  geometry = "models/slab.obj"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Limits{Min: 1, Max: 12, Step: 0.5}, cfg.Limits)
	assert.Equal(t, 0.5, cfg.Joinery.LodgeReveal)
	assert.Equal(t, 0.01, cfg.Joinery.LodgePadding)
	assert.False(t, cfg.Assets.Concurrent)
	assert.Equal(t, "/srv/models", cfg.Assets.Dir)
	assert.Equal(t, 32, cfg.Assets.CacheSize)
	assert.Equal(t, part.Identifier{Geometry: "models/oak-beam.obj", Material: "models/oak-beam.mtl"}, cfg.Library[part.RoleRoofBeam])
	assert.Equal(t, part.Identifier{Geometry: "models/slab.obj"}, cfg.Library[part.RoleFloor])
	assert.Equal(t, part.DefaultLibrary()[part.RoleRoofLodge], cfg.Library[part.RoleRoofLodge])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax", `limits {`, "failed to parse"},
		{"unknown attribute", `colour = "red"`, "failed to decode"},
		{"unknown role", "part \"gable\" {\n  geometry = \"g.obj\"\n}", "unknown part role"},
		{"duplicate role", "part \"floor\" {\n  geometry = \"a.obj\"\n}\npart \"floor\" {\n  geometry = \"b.obj\"\n}", "declared twice"},
		{"negative reveal", "joinery {\n  reveal = -1\n}", "reveal"},
		{"inverted limits", "limits {\n  min = 5\n  max = 2\n}", "min <= max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLimitsSnap(t *testing.T) {
	l := Default().Limits
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{1, 1},
		{1.2, 1},
		{1.3, 1.5},
		{7.74, 7.5},
		{19.9, 20},
		{42, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Snap(tt.in), "Snap(%g)", tt.in)
	}
}

func TestLimitsCheckDimensions(t *testing.T) {
	l := Default().Limits
	assert.NoError(t, l.CheckDimensions(part.Dimensions{Width: 5, Height: 3, Depth: 4}))
	assert.NoError(t, l.CheckDimensions(part.Dimensions{Width: 1, Height: 20, Depth: 1}))

	err := l.CheckDimensions(part.Dimensions{Width: 0.5, Height: 3, Depth: 25})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width 0.5")
	assert.Contains(t, err.Error(), "depth 25")
}
