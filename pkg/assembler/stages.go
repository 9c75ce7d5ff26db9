package assembler

import (
	"fmt"

	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
)

// layout carries what each stage learns to the stages after it.
type layout struct {
	dims    part.Dimensions
	joinery config.Joinery
	b       *part.Building

	floorBounds geom.Box3
	floorTop    float64
	postBounds  geom.Box3
	heightScale float64
	beamBounds  geom.Box3
}

// stage places every instance of one role.
type stage struct {
	name string
	role part.Role
	run  func(l *layout, t *part.Template) error
}

// pipeline runs strictly in this order; each stage reads what the previous
// ones recorded on the layout. Centering follows the last stage.
var pipeline = []stage{
	{"floor", part.RoleFloor, (*layout).placeFloor},
	{"ground-beams", part.RoleGroundBeam, (*layout).placeGroundBeams},
	{"roof-beams", part.RoleRoofBeam, (*layout).placeRoofBeams},
	{"corner-beams", part.RoleCornerBeam, (*layout).placeCornerBeams},
	{"roof-lodges", part.RoleRoofLodge, (*layout).placeRoofLodges},
}

func (l *layout) add(role part.Role, t *part.Template, xf part.Transform) *part.Instance {
	in := part.NewInstance(role, t, xf)
	l.b.Add(in)
	return in
}

// placeFloor stretches the slab over the footprint X in [0, w], Z in [-d, 0].
// Thickness stays that of the template.
func (l *layout) placeFloor(t *part.Template) error {
	size := t.Size()
	xf := part.Transform{Scale: geom.V(l.dims.Width/size.X, 1, l.dims.Depth/size.Z)}
	xf = xf.PlaceAnchor(part.RoleFloor.Anchor(t.Bounds()), geom.Vec3{})
	in := l.add(part.RoleFloor, t, xf)

	l.floorBounds = in.Bounds()
	l.floorTop = l.floorBounds.Max.Y
	return nil
}

// placeGroundBeams stands six posts on the floor: one at the midpoint of
// each depth-wise edge, pulled inward until flush, and one at each end of
// those edges. Every post is stretched to the wall height.
func (l *layout) placeGroundBeams(t *part.Template) error {
	pb := t.Bounds()
	ps := pb.Size()
	pw, pd := ps.X, ps.Z
	d := l.dims.Depth

	l.postBounds = pb
	l.heightScale = l.dims.Height / ps.Y

	fb := l.floorBounds
	c := fb.Center()
	mids := []geom.Vec3{
		geom.V(fb.Min.X, c.Y, c.Z),
		geom.V(fb.Max.X, c.Y, c.Z),
	}
	offsets := []float64{0, d/2 - pd/2, -(d/2 - pd/2)}

	anchor := part.RoleGroundBeam.Anchor(pb)
	scaled := part.Transform{Scale: geom.V(1, l.heightScale, 1)}
	for _, off := range offsets {
		for _, p := range mids {
			inset := p.Add(p.Direction(c).Scale(pw / 2))
			target := geom.V(inset.X, l.floorTop, inset.Z+off)
			l.add(part.RoleGroundBeam, t, scaled.PlaceAnchor(anchor, target))
		}
	}
	return nil
}

// placeRoofBeams closes the top of the posts with a front and back beam
// across the full width and two side beams fitted between them.
func (l *layout) placeRoofBeams(t *part.Template) error {
	w, h, d := l.dims.Width, l.dims.Height, l.dims.Depth
	ps := l.postBounds.Size()
	pw, pd := ps.X, ps.Z

	if d <= 2*pd {
		return &DegenerateInputError{Field: "depth", Value: d, Reason: fmt.Sprintf("must exceed twice the post depth %g", pd)}
	}
	if w <= pw {
		return &DegenerateInputError{Field: "width", Value: w, Reason: fmt.Sprintf("must exceed the post width %g", pw)}
	}

	bb := t.Bounds()
	length := bb.Size().X
	anchor := part.RoleRoofBeam.Anchor(bb)
	y := l.floorTop + h

	front := part.Transform{Scale: geom.V(w/length, 1, 1)}.PlaceAnchor(anchor, geom.V(0, y, -pd/2))
	back := front.Translate(geom.V(0, 0, -(d - pd)))
	side := part.Transform{Rotation: 90, Scale: geom.V((d-2*pd)/length, 1, 1)}.PlaceAnchor(anchor, geom.V(pd/2, y, -pd))
	opposite := side.Translate(geom.V(w-pw, 0, 0))

	for _, xf := range []part.Transform{front, back, side, opposite} {
		l.add(part.RoleRoofBeam, t, xf)
	}
	l.beamBounds = bb
	return nil
}

// cornerJoint is one bracket placement: the anchor in the XZ plane and the
// direction, in degrees about Y, of the beam it supports.
type cornerJoint struct {
	x, z     float64
	rotation float64
}

// cornerJoints lists the twelve bracket placements, two per post.
func cornerJoints(w, d, pw, pd float64) []cornerJoint {
	xL, xR := pw/2, w-pw/2
	zF, zM, zB := -pd/2, -d/2, -d+pd/2
	return []cornerJoint{
		{xL + pw/2, zF, 0},
		{xL, zF - pd/2, 90},
		{xR - pw/2, zF, 180},
		{xR, zF - pd/2, 90},
		{xL + pw/2, zB, 0},
		{xL, zB + pd/2, -90},
		{xR - pw/2, zB, 180},
		{xR, zB + pd/2, -90},
		{xL, zM - pd/2, 90},
		{xL, zM + pd/2, -90},
		{xR, zM - pd/2, 90},
		{xR, zM + pd/2, -90},
	}
}

// placeCornerBeams hangs a bracket under the beams at every post face that
// meets one. Arms are shortened, never stretched, so that two brackets
// reaching toward each other along a bay stop at its midpoint.
func (l *layout) placeCornerBeams(t *part.Template) error {
	w, d := l.dims.Width, l.dims.Depth
	ps := l.postBounds.Size()
	pw, pd := ps.X, ps.Z

	// Half the clear span between facing posts: the front and back posts
	// across the width, a corner and a middle post along the depth.
	reachX := (w - 2*pw) / 2
	reachZ := (d/2 - 1.5*pd) / 2
	if reachX <= 0 {
		return &DegenerateInputError{Field: "width", Value: w, Reason: fmt.Sprintf("leaves no room for brackets between posts %g wide", pw)}
	}
	if reachZ <= 0 {
		return &DegenerateInputError{Field: "depth", Value: d, Reason: fmt.Sprintf("leaves no room for brackets between posts %g deep", pd)}
	}

	arm := t.Size().X
	y := l.floorTop + l.dims.Height
	anchor := part.RoleCornerBeam.Anchor(t.Bounds())

	for _, j := range cornerJoints(w, d, pw, pd) {
		reach := reachZ
		if j.rotation == 0 || j.rotation == 180 {
			reach = reachX
		}
		xf := part.Transform{Rotation: j.rotation, Scale: geom.V(armScale(reach, arm), l.heightScale, 1)}
		l.add(part.RoleCornerBeam, t, xf.PlaceAnchor(anchor, geom.V(j.x, y, j.z)))
	}
	return nil
}

// armScale is the local X scale that fits an arm of the given length into
// reach, capped at the template's own length.
func armScale(reach, arm float64) float64 {
	if arm <= reach {
		return 1
	}
	return reach / arm
}

// placeRoofLodges lays a closed rectangle of lodges on the beams, overhanging
// the footprint by half the reveal on every side.
func (l *layout) placeRoofLodges(t *part.Template) error {
	w, h, d := l.dims.Width, l.dims.Height, l.dims.Depth
	r := l.joinery.LodgeReveal

	lb := t.Bounds()
	ls := lb.Size()
	length, lt := ls.X, ls.Z

	sideLen := d + r - 2*lt
	if sideLen <= 0 {
		return &DegenerateInputError{Field: "depth", Value: d, Reason: fmt.Sprintf("too shallow for lodges %g thick", lt)}
	}

	y := l.floorTop + h + l.beamBounds.Size().Y + l.joinery.LodgePadding
	anchor := part.RoleRoofLodge.Anchor(lb)

	across := part.Transform{Scale: geom.V((w+r)/length, 1, 1)}
	along := part.Transform{Rotation: 90, Scale: geom.V(sideLen/length, 1, 1)}
	placements := []part.Transform{
		across.PlaceAnchor(anchor, geom.V(-r/2, y, r/2-lt/2)),
		across.PlaceAnchor(anchor, geom.V(-r/2, y, -d-r/2+lt/2)),
		along.PlaceAnchor(anchor, geom.V(-r/2+lt/2, y, r/2-lt)),
		along.PlaceAnchor(anchor, geom.V(w+r/2-lt/2, y, r/2-lt)),
	}
	for _, xf := range placements {
		l.add(part.RoleRoofLodge, t, xf)
	}
	return nil
}

// Center moves every instance of b so the aggregate bounds are centered on
// the origin and returns the applied offset. Centering a centered building
// changes nothing.
func Center(b *part.Building) geom.Vec3 {
	if b.Len() == 0 {
		return geom.Vec3{}
	}
	off := b.Bounds().Center().Neg()
	b.Translate(off)
	return off
}

// Layout runs the whole pipeline over already resolved templates. It has no
// side effects beyond the returned building.
func Layout(dims part.Dimensions, j config.Joinery, templates map[part.Role]*part.Template) (*part.Building, error) {
	return runPipeline(dims, j, func(r part.Role) (*part.Template, error) {
		t, ok := templates[r]
		if !ok {
			return nil, &AssetLoadError{Role: r, Err: fmt.Errorf("no template for role")}
		}
		return t, nil
	})
}

func runPipeline(dims part.Dimensions, j config.Joinery, template func(part.Role) (*part.Template, error)) (*part.Building, error) {
	if err := validateDimensions(dims); err != nil {
		return nil, err
	}
	l := &layout{dims: dims, joinery: j, b: part.NewBuilding(dims)}
	for _, s := range pipeline {
		t, err := template(s.role)
		if err != nil {
			return nil, err
		}
		before := l.b.Len()
		if err := s.run(l, t); err != nil {
			return nil, fmt.Errorf("%s stage: %w", s.name, err)
		}
		log.Debugf("%s stage placed %d instances", s.name, l.b.Len()-before)
	}
	off := Center(l.b)
	log.Debugf("centering offset %s", off)
	return l.b, nil
}

func validateDimensions(dims part.Dimensions) error {
	if field, v := dims.FirstInvalid(); field != "" {
		return &DegenerateInputError{Field: field, Value: v, Reason: "must be a positive finite number"}
	}
	return nil
}
