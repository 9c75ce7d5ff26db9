// Package geom provides the vector and axis-aligned bounding box arithmetic
// used to place part templates. Everything here is a pure value type.
package geom
