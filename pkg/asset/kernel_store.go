package asset

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/chazu/timberframe/pkg/kernel"
	"github.com/chazu/timberframe/pkg/part"
)

// Built-in template measurements, in metres.
const (
	FloorThickness = 0.02
	PostSize       = 0.15
	BeamHeight     = 0.2
	BeamThickness  = 0.15
	BracketArm     = 0.3
	BracketDrop    = 0.15
	BracketStock   = 0.05
	LodgeHeight    = 0.1
	LodgeThickness = 0.12
)

// builtinMaterials colors the procedural templates.
var builtinMaterials = map[part.Role]part.Material{
	part.RoleFloor:      {Name: "floor", Diffuse: [3]float64{0.76, 0.6, 0.42}, Opacity: 1},
	part.RoleGroundBeam: {Name: "ground-beam", Diffuse: [3]float64{0.55, 0.38, 0.22}, Opacity: 1},
	part.RoleRoofBeam:   {Name: "roof-beam", Diffuse: [3]float64{0.6, 0.42, 0.25}, Opacity: 1},
	part.RoleCornerBeam: {Name: "corner-beam", Diffuse: [3]float64{0.45, 0.3, 0.18}, Opacity: 1},
	part.RoleRoofLodge:  {Name: "roof-lodge", Diffuse: [3]float64{0.68, 0.5, 0.3}, Opacity: 1},
}

// KernelStore builds the built-in templates with a geometry kernel. The
// identifier's geometry base name selects the shape, so the default
// library ("models/roof-beam.obj") resolves without any files on disk.
//
// Each template's origin is its role anchor: the floor's top back-left
// corner, the post's bottom center, and so on.
type KernelStore struct {
	k kernel.Kernel
	// Meshes controls whether templates are tessellated. Placement only
	// needs bounds, so headless builds can turn this off.
	Meshes bool

	mu    sync.Mutex
	built map[part.Role]*part.Template
}

// NewKernelStore returns a store that builds and tessellates with k.
func NewKernelStore(k kernel.Kernel) *KernelStore {
	return &KernelStore{k: k, Meshes: true, built: make(map[part.Role]*part.Template)}
}

// Resolve implements Store.
func (s *KernelStore) Resolve(ctx context.Context, id part.Identifier) (*part.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	role, err := builtinRole(id.Geometry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.built[role]; ok && t.ID() == id {
		return t, nil
	}

	solid := s.shape(role)
	var mesh *kernel.Mesh
	if s.Meshes {
		mesh, err = s.k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate %s: %w", role, err)
		}
		mesh.PartName = role.String()
	}
	t, err := part.NewTemplate(id, kernel.Bounds(solid), builtinMaterials[role], mesh, solid)
	if err != nil {
		return nil, err
	}
	s.built[role] = t
	return t, nil
}

func builtinRole(geometry string) (part.Role, error) {
	name := strings.TrimSuffix(path.Base(geometry), path.Ext(geometry))
	role, err := part.ParseRole(name)
	if err != nil {
		return 0, fmt.Errorf("%w: no built-in shape for %q", ErrNotFound, geometry)
	}
	return role, nil
}

func (s *KernelStore) shape(role part.Role) kernel.Solid {
	k := s.k
	switch role {
	case part.RoleFloor:
		return k.Translate(k.Box(1, FloorThickness, 1), 0, -FloorThickness, -1)
	case part.RoleGroundBeam:
		return k.Translate(k.Box(PostSize, 1, PostSize), -PostSize/2, 0, -PostSize/2)
	case part.RoleRoofBeam:
		return k.Translate(k.Box(1, BeamHeight, BeamThickness), 0, 0, -BeamThickness/2)
	case part.RoleCornerBeam:
		// L-shaped knee: an arm running under the beam and a leg against the post.
		arm := k.Translate(k.Box(BracketArm, BracketStock, BracketStock), 0, -BracketStock, -BracketStock/2)
		leg := k.Translate(k.Box(BracketStock, BracketDrop, BracketStock), 0, -BracketDrop, -BracketStock/2)
		return k.Union(arm, leg)
	default:
		return k.Translate(k.Box(1, LodgeHeight, LodgeThickness), 0, 0, -LodgeThickness/2)
	}
}
