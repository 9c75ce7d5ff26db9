package part

import (
	"fmt"

	"github.com/chazu/timberframe/pkg/geom"
)

// Transform places template-local geometry in the world. A local point p
// maps to Position + RotateY(Scale * p, Rotation).
type Transform struct {
	Position geom.Vec3 `json:"position" yaml:"position"`
	Rotation float64   `json:"rotation" yaml:"rotation"` // degrees about +Y
	Scale    geom.Vec3 `json:"scale" yaml:"scale"`
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: geom.V(1, 1, 1)}
}

// Apply maps a template-local point to world space.
func (t Transform) Apply(local geom.Vec3) geom.Vec3 {
	return t.Position.Add(local.Mul(t.Scale).RotateY(t.Rotation))
}

// ApplyBox returns the world-space box around the 8 transformed corners of
// a local box.
func (t Transform) ApplyBox(local geom.Box3) geom.Box3 {
	out := geom.EmptyBox()
	for _, c := range local.Corners() {
		out = out.ExpandByPoint(t.Apply(c))
	}
	return out
}

// PlaceAnchor returns t with Position chosen so that the local anchor point
// lands on target. Rotation and Scale are kept.
func (t Transform) PlaceAnchor(anchor, target geom.Vec3) Transform {
	t.Position = target.Sub(anchor.Mul(t.Scale).RotateY(t.Rotation))
	return t
}

// Translate returns t moved by d.
func (t Transform) Translate(d geom.Vec3) Transform {
	t.Position = t.Position.Add(d)
	return t
}

func (t Transform) String() string {
	return fmt.Sprintf("pos=%s rot=%g scale=%s", t.Position, t.Rotation, t.Scale)
}
