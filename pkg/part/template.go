package part

import (
	"errors"
	"fmt"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/kernel"
)

// ErrDegenerateBounds is returned by NewTemplate when the bounds are empty,
// non-finite, or flat along an axis.
var ErrDegenerateBounds = errors.New("degenerate template bounds")

// Material is the surface description loaded alongside a template's
// geometry.
type Material struct {
	Name    string     `json:"name" yaml:"name"`
	Diffuse [3]float64 `json:"diffuse" yaml:"diffuse"`
	Opacity float64    `json:"opacity" yaml:"opacity"`
}

// DefaultMaterial is used when a template carries no material file.
var DefaultMaterial = Material{Name: "default", Diffuse: [3]float64{0.8, 0.8, 0.8}, Opacity: 1}

// Template is an immutable piece of geometry shared by every instance that
// places it. Construct it with NewTemplate.
type Template struct {
	id       Identifier
	bounds   geom.Box3
	mesh     *kernel.Mesh
	solid    kernel.Solid
	material Material
}

// NewTemplate validates bounds and returns a template. mesh and solid are
// optional; a template without either still places and measures correctly.
func NewTemplate(id Identifier, bounds geom.Box3, mat Material, mesh *kernel.Mesh, solid kernel.Solid) (*Template, error) {
	if bounds.IsDegenerate() {
		return nil, fmt.Errorf("template %s: %w: %s", id, ErrDegenerateBounds, bounds)
	}
	return &Template{
		id:       id,
		bounds:   bounds,
		mesh:     mesh,
		solid:    solid,
		material: mat,
	}, nil
}

// ID returns the identifier the template was loaded from.
func (t *Template) ID() Identifier { return t.id }

// Bounds returns the template-local bounding box.
func (t *Template) Bounds() geom.Box3 { return t.bounds }

// Size returns the template-local extent.
func (t *Template) Size() geom.Vec3 { return t.bounds.Size() }

// Mesh returns the template-local mesh, or nil.
func (t *Template) Mesh() *kernel.Mesh { return t.mesh }

// Solid returns the kernel solid the template was built from, or nil.
func (t *Template) Solid() kernel.Solid { return t.solid }

// Material returns the template's material.
func (t *Template) Material() Material { return t.material }

// Anchor returns the template-local point that placement formulas for role
// r position in world space.
func (r Role) Anchor(b geom.Box3) geom.Vec3 {
	c := b.Center()
	switch r {
	case RoleFloor:
		return geom.V(b.Min.X, b.Max.Y, b.Max.Z)
	case RoleGroundBeam:
		return geom.V(c.X, b.Min.Y, c.Z)
	case RoleCornerBeam:
		return geom.V(b.Min.X, b.Max.Y, c.Z)
	case RoleRoofBeam, RoleRoofLodge:
		return geom.V(b.Min.X, b.Min.Y, c.Z)
	}
	return c
}
