package geom

import "math"

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// SinCosDeg returns sin and cos of an angle given in degrees. Quarter turns
// return exact values so that 90° rotations keep axis-aligned boxes exact.
func SinCosDeg(deg float64) (sin, cos float64) {
	q := deg / 90
	if q == math.Trunc(q) {
		switch ((int64(q) % 4) + 4) % 4 {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		case 3:
			return -1, 0
		}
	}
	return math.Sincos(DegToRad(deg))
}

// FitDistance returns how far a perspective camera with the given vertical
// field of view must sit from a box of the given size, along +Z, so the
// whole box is in frame.
func FitDistance(size Vec3, fovDeg float64) float64 {
	maxSize := math.Max(size.X, math.Max(size.Y, size.Z))
	return maxSize/(2*math.Tan(DegToRad(fovDeg)/2)) + size.Z
}
