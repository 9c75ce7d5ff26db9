package part

import (
	"fmt"
	"math"
)

// Role is the structural function a template serves in the building.
type Role int

const (
	RoleFloor      Role = iota // floor slab
	RoleGroundBeam             // vertical post
	RoleRoofBeam               // horizontal perimeter beam at roof height
	RoleCornerBeam             // bracket at a post/beam junction
	RoleRoofLodge              // purlin resting on the roof beams
)

// Roles lists every role in pipeline order.
var Roles = []Role{RoleFloor, RoleGroundBeam, RoleRoofBeam, RoleCornerBeam, RoleRoofLodge}

func (r Role) String() string {
	switch r {
	case RoleFloor:
		return "floor"
	case RoleGroundBeam:
		return "ground-beam"
	case RoleRoofBeam:
		return "roof-beam"
	case RoleCornerBeam:
		return "corner-beam"
	case RoleRoofLodge:
		return "roof-lodge"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown part role %q", s)
}

// MarshalText implements encoding.TextMarshaler so roles serialize by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identifier names the geometry and material assets of one template.
type Identifier struct {
	Geometry string `json:"geometry" yaml:"geometry"`
	Material string `json:"material" yaml:"material"`
}

func (id Identifier) String() string {
	return id.Geometry + "+" + id.Material
}

// Library maps every role to the identifier of its template.
type Library map[Role]Identifier

// DefaultLibrary returns the identifiers shipped with the built-in models.
func DefaultLibrary() Library {
	lib := make(Library, len(Roles))
	for _, r := range Roles {
		lib[r] = Identifier{
			Geometry: "models/" + r.String() + ".obj",
			Material: "models/" + r.String() + ".mtl",
		}
	}
	return lib
}

// Dimensions are the three scalar inputs of a build, in metres.
type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Depth  float64 `json:"depth" yaml:"depth"`
}

// Field returns the named dimension and false if the name is unknown.
func (d Dimensions) Field(name string) (float64, bool) {
	switch name {
	case "width":
		return d.Width, true
	case "height":
		return d.Height, true
	case "depth":
		return d.Depth, true
	}
	return 0, false
}

// FirstInvalid returns the name and value of the first dimension that is
// not a positive finite number, or "" when all three are usable.
func (d Dimensions) FirstInvalid() (string, float64) {
	for _, name := range []string{"width", "height", "depth"} {
		v, _ := d.Field(name)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return name, v
		}
	}
	return "", 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%gx%g", d.Width, d.Height, d.Depth)
}
