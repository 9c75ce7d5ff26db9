package geom

import (
	"fmt"
	"math"
)

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vec3 `json:"min" yaml:"min"`
	Max Vec3 `json:"max" yaml:"max"`
}

// EmptyBox returns a box that contains nothing. Expanding it by any point
// yields a box around that point.
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoxFromPoints returns the smallest box containing every point.
func BoxFromPoints(points ...Vec3) Box3 {
	b := EmptyBox()
	for _, p := range points {
		b = b.ExpandByPoint(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint returns the box grown to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both b and o.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the midpoint of the box.
func (b Box3) Center() Vec3 {
	return Vec3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Size returns the extent of the box along each axis.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by d.
func (b Box3) Translate(d Vec3) Box3 {
	return Box3{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Corners returns the 8 corner points.
func (b Box3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Overlap returns the extent of the intersection of b and o along each
// axis. A non-positive component means the boxes are separated (or only
// touching) on that axis.
func (b Box3) Overlap(o Box3) Vec3 {
	return b.Max.Min(o.Max).Sub(b.Min.Max(o.Min))
}

// Intersects reports whether the boxes share volume thicker than tol on
// every axis. Boxes that only touch face to face do not intersect.
func (b Box3) Intersects(o Box3, tol float64) bool {
	ov := b.Overlap(o)
	return ov.X > tol && ov.Y > tol && ov.Z > tol
}

// IsFinite reports whether both corners are finite.
func (b Box3) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

// IsDegenerate reports whether the box is empty, non-finite, or has zero
// size along any axis.
func (b Box3) IsDegenerate() bool {
	if b.IsEmpty() || !b.IsFinite() {
		return true
	}
	s := b.Size()
	return s.X <= 0 || s.Y <= 0 || s.Z <= 0
}

func (b Box3) String() string {
	return fmt.Sprintf("[%s .. %s]", b.Min, b.Max)
}
