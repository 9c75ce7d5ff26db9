package part

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/timberframe/pkg/geom"
)

const tol = 1e-9

func mustTemplate(t *testing.T, b geom.Box3) *Template {
	t.Helper()
	tmpl, err := NewTemplate(Identifier{Geometry: "g", Material: "m"}, b, DefaultMaterial, nil, nil)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	return tmpl
}

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", r, err)
		}
		if got != r {
			t.Errorf("ParseRole(%q) = %v", r, got)
		}
	}
	if _, err := ParseRole("gable"); err == nil {
		t.Error("ParseRole(gable) succeeded, want error")
	}
	if s := Role(42).String(); s != "Role(42)" {
		t.Errorf("unknown role string = %q", s)
	}
}

func TestDefaultLibraryCoversEveryRole(t *testing.T) {
	lib := DefaultLibrary()
	if len(lib) != len(Roles) {
		t.Fatalf("library has %d entries, want %d", len(lib), len(Roles))
	}
	if got := lib[RoleCornerBeam].Geometry; got != "models/corner-beam.obj" {
		t.Errorf("corner-beam geometry = %q", got)
	}
	if got := lib[RoleFloor].Material; got != "models/floor.mtl" {
		t.Errorf("floor material = %q", got)
	}
}

func TestDimensionsFirstInvalid(t *testing.T) {
	tests := []struct {
		name  string
		dims  Dimensions
		field string
	}{
		{"valid", Dimensions{5, 3, 4}, ""},
		{"zero width", Dimensions{0, 3, 4}, "width"},
		{"negative height", Dimensions{5, -1, 4}, "height"},
		{"nan depth", Dimensions{5, 3, math.NaN()}, "depth"},
		{"inf width first", Dimensions{math.Inf(1), 0, 4}, "width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := tt.dims.FirstInvalid(); got != tt.field {
				t.Errorf("FirstInvalid() = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestNewTemplateRejectsDegenerateBounds(t *testing.T) {
	tests := []struct {
		name string
		b    geom.Box3
	}{
		{"empty", geom.EmptyBox()},
		{"flat", geom.Box3{Max: geom.V(1, 0, 1)}},
		{"nan", geom.Box3{Max: geom.V(1, math.NaN(), 1)}},
		{"inf", geom.Box3{Min: geom.V(math.Inf(-1), 0, 0), Max: geom.V(1, 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplate(Identifier{Geometry: "x"}, tt.b, DefaultMaterial, nil, nil)
			if !errors.Is(err, ErrDegenerateBounds) {
				t.Fatalf("err = %v, want ErrDegenerateBounds", err)
			}
		})
	}
}

func TestRoleAnchor(t *testing.T) {
	b := geom.Box3{Min: geom.V(-1, -2, -3), Max: geom.V(1, 2, 3)}
	tests := []struct {
		role Role
		want geom.Vec3
	}{
		{RoleFloor, geom.V(-1, 2, 3)},
		{RoleGroundBeam, geom.V(0, -2, 0)},
		{RoleRoofBeam, geom.V(-1, -2, 0)},
		{RoleCornerBeam, geom.V(-1, 2, 0)},
		{RoleRoofLodge, geom.V(-1, -2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := tt.role.Anchor(b); !got.ApproxEqual(tt.want, tol) {
				t.Errorf("Anchor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformApply(t *testing.T) {
	xf := Transform{Position: geom.V(10, 0, 0), Rotation: 90, Scale: geom.V(2, 1, 1)}
	// (1,0,0) scaled to (2,0,0), turned to (0,0,-2), moved to (10,0,-2).
	if got := xf.Apply(geom.V(1, 0, 0)); !got.ApproxEqual(geom.V(10, 0, -2), tol) {
		t.Errorf("Apply = %v", got)
	}
}

func TestTransformPlaceAnchor(t *testing.T) {
	anchor := geom.V(0.5, 0, -0.5)
	target := geom.V(3, 2, 1)
	for _, rot := range []float64{0, 90, 180, -90, 33} {
		xf := Transform{Rotation: rot, Scale: geom.V(2, 3, 0.5)}.PlaceAnchor(anchor, target)
		if got := xf.Apply(anchor); !got.ApproxEqual(target, tol) {
			t.Errorf("rot %g: anchor lands on %v, want %v", rot, got, target)
		}
	}
}

func TestTransformApplyBoxQuarterTurn(t *testing.T) {
	local := geom.Box3{Min: geom.V(0, 0, -0.5), Max: geom.V(4, 1, 0.5)}
	xf := Transform{Rotation: 90, Scale: geom.V(1, 1, 1)}
	got := xf.ApplyBox(local)
	want := geom.Box3{Min: geom.V(-0.5, 0, -4), Max: geom.V(0.5, 1, 0)}
	if !got.Min.ApproxEqual(want.Min, tol) || !got.Max.ApproxEqual(want.Max, tol) {
		t.Errorf("ApplyBox = %v, want %v", got, want)
	}
}

func TestInstanceIDs(t *testing.T) {
	tmpl := mustTemplate(t, geom.Box3{Max: geom.V(1, 1, 1)})
	a := NewInstance(RoleRoofBeam, tmpl, Identity())
	b := NewInstance(RoleRoofBeam, tmpl, Identity())
	if len(a.ID) != 8 {
		t.Errorf("ID %q has length %d, want 8", a.ID, len(a.ID))
	}
	if a.ID == b.ID {
		t.Errorf("two instances share ID %q", a.ID)
	}
	if a.Name() != "roof-beam-"+a.ID {
		t.Errorf("Name() = %q", a.Name())
	}
}

func TestInstanceLength(t *testing.T) {
	tmpl := mustTemplate(t, geom.Box3{Max: geom.V(2, 1, 1)})
	in := NewInstance(RoleRoofLodge, tmpl, Transform{Rotation: 90, Scale: geom.V(1.5, 1, 1)})
	if got := in.Length(); math.Abs(got-3) > tol {
		t.Errorf("Length() = %g, want 3", got)
	}
}

func TestBuildingBoundsFollowInstances(t *testing.T) {
	tmpl := mustTemplate(t, geom.Box3{Max: geom.V(1, 1, 1)})
	b := NewBuilding(Dimensions{5, 3, 4})
	if !b.Bounds().IsEmpty() {
		t.Fatalf("new building bounds = %v, want empty", b.Bounds())
	}

	b.Add(NewInstance(RoleFloor, tmpl, Identity()))
	b.Add(NewInstance(RoleGroundBeam, tmpl, Identity().Translate(geom.V(2, 0, 0))))
	want := geom.Box3{Max: geom.V(3, 1, 1)}
	if b.Bounds() != want {
		t.Fatalf("Bounds() = %v, want %v", b.Bounds(), want)
	}

	b.Translate(geom.V(-1.5, 0, 0))
	want = geom.Box3{Min: geom.V(-1.5, 0, 0), Max: geom.V(1.5, 1, 1)}
	if !b.Bounds().Min.ApproxEqual(want.Min, tol) || !b.Bounds().Max.ApproxEqual(want.Max, tol) {
		t.Fatalf("after Translate Bounds() = %v, want %v", b.Bounds(), want)
	}
}

func TestBuildingRoleQueries(t *testing.T) {
	post := mustTemplate(t, geom.Box3{Max: geom.V(1, 1, 1)})
	beam := mustTemplate(t, geom.Box3{Max: geom.V(2, 1, 1)})
	b := NewBuilding(Dimensions{5, 3, 4})
	for i := 0; i < 6; i++ {
		b.Add(NewInstance(RoleGroundBeam, post, Identity()))
	}
	b.Add(NewInstance(RoleRoofBeam, beam, Identity()))

	counts := b.CountByRole()
	if counts[RoleGroundBeam] != 6 || counts[RoleRoofBeam] != 1 || counts[RoleFloor] != 0 {
		t.Errorf("CountByRole() = %v", counts)
	}
	if n := len(b.ByRole(RoleGroundBeam)); n != 6 {
		t.Errorf("ByRole(ground-beam) = %d instances", n)
	}
	tmpls := b.Templates()
	if tmpls[RoleRoofBeam] != beam || tmpls[RoleGroundBeam] != post {
		t.Errorf("Templates() did not map roles to their templates")
	}

	insts := b.Instances()
	insts[0] = nil
	if b.Instances()[0] == nil {
		t.Error("Instances() exposed the internal slice")
	}
}
