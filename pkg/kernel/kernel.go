// Package kernel defines the abstract geometry kernel used to build part
// template geometry. Implementations (sdfx) provide solid modeling behind
// this interface so template construction never depends on one backend.
package kernel

import "github.com/chazu/timberframe/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates a box of the given size with its minimum corner at the origin.
	Box(x, y, z float64) Solid

	// Union joins solids into one.
	Union(a, b Solid) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangles.
	ToMesh(s Solid) (*Mesh, error)
}

// Bounds returns the bounding box of s as a geom.Box3.
func Bounds(s Solid) geom.Box3 {
	lo, hi := s.BoundingBox()
	return geom.Box3{Min: geom.V(lo[0], lo[1], lo[2]), Max: geom.V(hi[0], hi[1], hi[2])}
}
