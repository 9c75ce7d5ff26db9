package export

import (
	"fmt"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXFUnits converts metres to drawing units (millimetres).
const DXFUnits = 1000.0

// roleLayerColors gives each role layer an ACI color.
var roleLayerColors = map[part.Role]color.ColorNumber{
	part.RoleFloor:      color.Yellow,
	part.RoleGroundBeam: color.Red,
	part.RoleRoofBeam:   color.Cyan,
	part.RoleCornerBeam: color.Magenta,
	part.RoleRoofLodge:  color.Green,
}

// WriteDXF saves a plan view of b with one layer per role. Each instance
// footprint is drawn as four LINE entities. Plan Y is world -Z, so the
// front of the building faces down.
func WriteDXF(path string, b *part.Building) error {
	if b.Len() == 0 {
		return ErrEmptyBuilding
	}

	d := dxf.NewDrawing()
	for _, role := range part.Roles {
		insts := b.ByRole(role)
		if len(insts) == 0 {
			continue
		}
		if _, err := d.AddLayer(role.String(), roleLayerColors[role], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("adding layer %s: %w", role, err)
		}
		for _, in := range insts {
			if err := footprint(d, in.Bounds()); err != nil {
				return fmt.Errorf("drawing %s: %w", in.Name(), err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving dxf: %w", err)
	}
	return nil
}

func footprint(d *drawing.Drawing, box geom.Box3) error {
	x0, x1 := box.Min.X*DXFUnits, box.Max.X*DXFUnits
	y0, y1 := -box.Max.Z*DXFUnits, -box.Min.Z*DXFUnits
	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return err
		}
	}
	return nil
}
