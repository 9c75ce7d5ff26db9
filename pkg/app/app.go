// Package app is the facade used by interactive front ends. It turns
// parameter changes and scripts into JSON-ready mesh data for a viewer,
// keeping a scene that always shows the latest successful build.
package app

import (
	"context"
	"errors"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/chazu/timberframe/pkg/assembler"
	"github.com/chazu/timberframe/pkg/asset"
	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/kernel"
	"github.com/chazu/timberframe/pkg/part"
	"github.com/chazu/timberframe/pkg/scene"
	"github.com/chazu/timberframe/pkg/script"
	"github.com/chazu/timberframe/pkg/tessellate"
)

var log = logging.Logger("tf-app")

// CameraFOV is the vertical field of view, in degrees, the camera distance
// is computed for.
const CameraFOV = 50.0

// Error kinds reported to the front end.
const (
	KindInput    = "input"
	KindAsset    = "asset"
	KindScript   = "script"
	KindInternal = "internal"
	KindCheck    = "check"
)

// App owns the scene and everything needed to rebuild it.
type App struct {
	ctx       context.Context
	base      config.Config
	kernel    kernel.Kernel
	scene     *scene.Scene
	assembler *assembler.Assembler
	engine    *script.Engine
}

// MeshData is the JSON-serializable mesh format sent to the front end.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Role     string    `json:"role"`
	Color    string    `json:"color"`
}

// ErrorData is a JSON-serializable error for the front end.
type ErrorData struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// BuildResult is the full result returned to the front end. A result with
// errors carries no meshes and the scene keeps its previous contents.
// Warnings are structural findings on a committed building. Stale is set
// when a newer request superseded this one.
type BuildResult struct {
	Building       string          `json:"building"`
	Dimensions     part.Dimensions `json:"dimensions"`
	Meshes         []MeshData      `json:"meshes"`
	Bounds         geom.Box3       `json:"bounds"`
	CameraDistance float64         `json:"cameraDistance"`
	Counts         map[string]int  `json:"counts"`
	Errors         []ErrorData     `json:"errors"`
	Warnings       []ErrorData     `json:"warnings"`
	Stale          bool            `json:"stale"`
}

// New returns an App resolving templates from store and tessellating with k.
func New(cfg config.Config, store asset.Store, k kernel.Kernel) *App {
	sc := scene.New()
	return &App{
		ctx:       context.Background(),
		base:      cfg,
		kernel:    k,
		scene:     sc,
		assembler: assembler.New(store, sc, cfg),
		engine:    script.NewEngine(cfg),
	}
}

// Startup records the context builds run under.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// Scene returns the live scene.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Current returns the building the scene shows, or nil.
func (a *App) Current() *part.Building {
	return a.assembler.Current()
}

// Build assembles a building from slider values. Values outside the
// configured limits are rejected; values inside are snapped to the step.
func (a *App) Build(width, height, depth float64) BuildResult {
	dims := part.Dimensions{Width: width, Height: height, Depth: depth}
	if err := a.base.Limits.CheckDimensions(dims); err != nil {
		return errorResult(dims, ErrorData{Kind: KindInput, Message: err.Error()})
	}
	l := a.base.Limits
	dims = part.Dimensions{Width: l.Snap(width), Height: l.Snap(height), Depth: l.Snap(depth)}

	a.assembler.Configure(a.base)
	return a.build(dims)
}

// Evaluate runs a script and builds the last building it requests, with
// the script's joinery and part overrides.
func (a *App) Evaluate(source string) BuildResult {
	prog, evalErrs, err := a.engine.Evaluate(source)
	if errors.Is(err, script.ErrSuperseded) {
		log.Debugf("evaluation superseded")
		res := errorResult(part.Dimensions{})
		res.Stale = true
		return res
	}
	if err != nil {
		log.Warnf("evaluate fatal error: %v", err)
		return errorResult(part.Dimensions{}, ErrorData{Kind: KindInternal, Message: err.Error()})
	}
	if len(evalErrs) > 0 {
		res := errorResult(part.Dimensions{})
		for _, e := range evalErrs {
			res.Errors = append(res.Errors, ErrorData{Kind: KindScript, Line: e.Line, Message: e.Message})
		}
		return res
	}

	req, ok := prog.Last()
	if !ok {
		return errorResult(part.Dimensions{}, ErrorData{Kind: KindScript, Message: "script does not request a building"})
	}
	a.assembler.Configure(prog.Config)
	return a.build(req.Dimensions)
}

func (a *App) build(dims part.Dimensions) BuildResult {
	b, err := a.assembler.Build(a.ctx, dims)
	if errors.Is(err, assembler.ErrStale) {
		log.Debugf("build for %s superseded", dims)
		res := errorResult(dims)
		res.Stale = true
		return res
	}
	if err != nil {
		return errorResult(dims, classify(err))
	}

	meshes, err := tessellate.Tessellate(b, a.kernel)
	if err != nil {
		log.Errorf("tessellate error: %v", err)
		return errorResult(dims, ErrorData{Kind: KindInternal, Message: "tessellation failed: " + err.Error()})
	}

	res := BuildResult{
		Building:       b.ID,
		Dimensions:     dims,
		Meshes:         make([]MeshData, 0, len(meshes)),
		Bounds:         b.Bounds(),
		CameraDistance: geom.FitDistance(b.Bounds().Size(), CameraFOV),
		Counts:         make(map[string]int),
		Errors:         []ErrorData{},
		Warnings:       []ErrorData{},
	}
	for _, f := range assembler.Check(b) {
		res.Warnings = append(res.Warnings, ErrorData{Kind: KindCheck, Message: f.Error()})
	}
	for r, n := range b.CountByRole() {
		res.Counts[r.String()] = n
	}
	insts := b.Instances()
	for i, m := range meshes {
		in := insts[i]
		res.Meshes = append(res.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Role:     in.Role.String(),
			Color:    hexColor(in.Template.Material()),
		})
	}
	return res
}

func errorResult(dims part.Dimensions, errs ...ErrorData) BuildResult {
	return BuildResult{
		Dimensions: dims,
		Meshes:     []MeshData{},
		Errors:     append([]ErrorData{}, errs...),
		Warnings:   []ErrorData{},
	}
}

// classify maps assembler errors to front-end error kinds.
func classify(err error) ErrorData {
	switch {
	case errors.Is(err, assembler.ErrDegenerateInput):
		return ErrorData{Kind: KindInput, Message: err.Error()}
	case errors.Is(err, assembler.ErrAssetLoad):
		return ErrorData{Kind: KindAsset, Message: err.Error()}
	default:
		return ErrorData{Kind: KindInternal, Message: err.Error()}
	}
}

func hexColor(m part.Material) string {
	c := func(v float64) int {
		return int(min(max(v, 0), 1)*255 + 0.5)
	}
	return fmt.Sprintf("#%02X%02X%02X", c(m.Diffuse[0]), c(m.Diffuse[1]), c(m.Diffuse[2]))
}
