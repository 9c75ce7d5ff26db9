// Package config loads timberframe settings from an HCL file.
//
//	log_level = "info"
//
//	limits {
//	  min  = 1
//	  max  = 20
//	  step = 0.5
//	}
//
//	joinery {
//	  reveal  = 0.3
//	  padding = 0.01
//	}
//
//	assets {
//	  concurrent = true
//	  cache_size = 32
//	  dir        = "./models"
//	}
//
//	part "roof-beam" {
//	  geometry = "models/oak-beam.obj"
//	  material = "models/oak-beam.mtl"
//	}
//
// Every block and attribute is optional; anything left out keeps the value
// from Default.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/chazu/timberframe/pkg/part"
)

// Limits bound the dimensions offered by the parameter surface.
type Limits struct {
	Min  float64
	Max  float64
	Step float64
}

// Check reports whether v is an allowed value for the named dimension.
func (l Limits) Check(name string, v float64) error {
	if math.IsNaN(v) || v < l.Min || v > l.Max {
		return fmt.Errorf("%s %g outside [%g, %g]", name, v, l.Min, l.Max)
	}
	return nil
}

// Snap clamps v into range and rounds it to the nearest step above Min.
func (l Limits) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return l.Min
	}
	v = math.Max(l.Min, math.Min(l.Max, v))
	if l.Step <= 0 {
		return v
	}
	steps := math.Round((v - l.Min) / l.Step)
	return math.Min(l.Max, l.Min+steps*l.Step)
}

// CheckDimensions applies Check to all three dimensions.
func (l Limits) CheckDimensions(d part.Dimensions) error {
	var errs []error
	for _, name := range []string{"width", "height", "depth"} {
		v, _ := d.Field(name)
		if err := l.Check(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Joinery holds the margins applied where roof lodges meet.
type Joinery struct {
	// LodgeReveal is the total overhang of the lodge rectangle past the
	// footprint, split evenly between opposite sides. It applies to both
	// axes.
	LodgeReveal float64
	// LodgePadding is the vertical gap between roof beam tops and lodges.
	LodgePadding float64
}

// Assets configures template resolution.
type Assets struct {
	// Concurrent prefetches every template in parallel before placement.
	Concurrent bool
	// CacheSize is the template LRU capacity.
	CacheSize int
	// Dir, when set, loads OBJ/MTL files from this directory instead of
	// the built-in procedural templates.
	Dir string
	// MeshCells is the marching cubes resolution for built-in templates.
	MeshCells int
}

// Config is the complete configuration.
type Config struct {
	LogLevel string
	Limits   Limits
	Joinery  Joinery
	Assets   Assets
	Library  part.Library
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Limits:   Limits{Min: 1, Max: 20, Step: 0.5},
		Joinery:  Joinery{LodgeReveal: 0.3, LodgePadding: 0.01},
		Assets:   Assets{Concurrent: true, CacheSize: 32, MeshCells: 64},
		Library:  part.DefaultLibrary(),
	}
}

// Validate checks the configuration for values no build can use.
func (c Config) Validate() error {
	var errs []error
	l := c.Limits
	if !(l.Min > 0) || !(l.Max >= l.Min) || math.IsInf(l.Max, 0) {
		errs = append(errs, fmt.Errorf("limits: need 0 < min <= max, got min=%g max=%g", l.Min, l.Max))
	}
	if l.Step < 0 || math.IsNaN(l.Step) {
		errs = append(errs, fmt.Errorf("limits: step %g is negative", l.Step))
	}
	for name, v := range map[string]float64{"reveal": c.Joinery.LodgeReveal, "padding": c.Joinery.LodgePadding} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("joinery: %s %g must be a non-negative number", name, v))
		}
	}
	if c.Assets.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("assets: cache_size %d is negative", c.Assets.CacheSize))
	}
	for _, r := range part.Roles {
		if id, ok := c.Library[r]; !ok || id.Geometry == "" {
			errs = append(errs, fmt.Errorf("part %s: no geometry", r))
		}
	}
	return errors.Join(errs...)
}

type hclFile struct {
	LogLevel *string     `hcl:"log_level,optional"`
	Limits   *hclLimits  `hcl:"limits,block"`
	Joinery  *hclJoinery `hcl:"joinery,block"`
	Assets   *hclAssets  `hcl:"assets,block"`
	Parts    []*hclPart  `hcl:"part,block"`
}

type hclLimits struct {
	Min  *float64 `hcl:"min,optional"`
	Max  *float64 `hcl:"max,optional"`
	Step *float64 `hcl:"step,optional"`
}

type hclJoinery struct {
	Reveal  *float64 `hcl:"reveal,optional"`
	Padding *float64 `hcl:"padding,optional"`
}

type hclAssets struct {
	Concurrent *bool   `hcl:"concurrent,optional"`
	CacheSize  *int    `hcl:"cache_size,optional"`
	Dir        *string `hcl:"dir,optional"`
	MeshCells  *int    `hcl:"mesh_cells,optional"`
}

type hclPart struct {
	Role     string  `hcl:"role,label"`
	Geometry string  `hcl:"geometry"`
	Material *string `hcl:"material,optional"`
}

// Load reads the configuration at path. A missing file yields Default.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source over Default. filename is used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	cfg := Default()
	if err := raw.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

func (f *hclFile) apply(cfg *Config) error {
	set(&cfg.LogLevel, f.LogLevel)
	if l := f.Limits; l != nil {
		set(&cfg.Limits.Min, l.Min)
		set(&cfg.Limits.Max, l.Max)
		set(&cfg.Limits.Step, l.Step)
	}
	if j := f.Joinery; j != nil {
		set(&cfg.Joinery.LodgeReveal, j.Reveal)
		set(&cfg.Joinery.LodgePadding, j.Padding)
	}
	if a := f.Assets; a != nil {
		set(&cfg.Assets.Concurrent, a.Concurrent)
		set(&cfg.Assets.CacheSize, a.CacheSize)
		set(&cfg.Assets.Dir, a.Dir)
		set(&cfg.Assets.MeshCells, a.MeshCells)
	}
	seen := make(map[part.Role]bool)
	for _, p := range f.Parts {
		role, err := part.ParseRole(p.Role)
		if err != nil {
			return err
		}
		if seen[role] {
			return fmt.Errorf("part %q declared twice", p.Role)
		}
		seen[role] = true
		id := part.Identifier{Geometry: p.Geometry}
		set(&id.Material, p.Material)
		cfg.Library[role] = id
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
