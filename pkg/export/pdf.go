package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyBuilding is returned when there is nothing to export.
var ErrEmptyBuilding = errors.New("building has no instances")

// partColor represents an RGB color for a role in the plan view.
type partColor struct {
	R, G, B int
}

// roleColors follows the built-in template materials.
var roleColors = map[part.Role]partColor{
	part.RoleFloor:      {R: 210, G: 180, B: 140}, // tan
	part.RoleGroundBeam: {R: 121, G: 85, B: 72},   // brown
	part.RoleRoofBeam:   {R: 255, G: 152, B: 0},   // orange
	part.RoleCornerBeam: {R: 244, G: 67, B: 54},   // red
	part.RoleRoofLodge:  {R: 76, G: 175, B: 80},   // green
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	planWidth    = 165.0
	tableLeft    = marginLeft + planWidth + 10.0
	qrSize       = 30.0
	rowHeight    = 5.0
)

// Descriptor is the build summary encoded in the report's QR code.
type Descriptor struct {
	Building string  `json:"building"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Depth    float64 `json:"depth"`
	Parts    int     `json:"parts"`
}

// NewDescriptor summarizes b.
func NewDescriptor(b *part.Building) Descriptor {
	return Descriptor{
		Building: b.ID,
		Width:    b.Dimensions.Width,
		Height:   b.Dimensions.Height,
		Depth:    b.Dimensions.Depth,
		Parts:    b.Len(),
	}
}

// WritePDF generates a one-page assembly report: a plan view of every
// instance footprint, the bill of materials, and a QR code carrying the
// build descriptor.
func WritePDF(path string, b *part.Building) error {
	if b.Len() == 0 {
		return ErrEmptyBuilding
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Timber frame %s m", b.Dimensions)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	size := b.Bounds().Size()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Envelope: %.2f x %.2f x %.2f m | Building: %s",
		b.Len(), size.X, size.Y, size.Z, b.ID)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, 5, stats, "", 0, "L", false, 0, "")

	if err := renderQR(pdf, b); err != nil {
		return err
	}
	renderPlan(pdf, b)
	renderBOMTable(pdf, BillOfMaterials(b))

	return pdf.OutputFileAndClose(path)
}

// renderPlan draws the XZ footprint of every instance, viewed from above
// with the front of the building at the bottom of the page.
func renderPlan(pdf *fpdf.Fpdf, b *part.Building) {
	bounds := b.Bounds()
	size := bounds.Size()
	drawH := pageHeight - drawAreaTop - marginBottom

	scale := math.Min(planWidth/size.X, drawH/size.Z)
	offX := marginLeft + (planWidth-size.X*scale)/2
	offY := drawAreaTop + (drawH-size.Z*scale)/2

	toPage := func(box geom.Box3) (x, y, w, h float64) {
		return offX + (box.Min.X-bounds.Min.X)*scale,
			offY + (box.Min.Z-bounds.Min.Z)*scale,
			(box.Max.X - box.Min.X) * scale,
			(box.Max.Z - box.Min.Z) * scale
	}

	for _, role := range part.Roles {
		col := roleColors[role]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		for _, in := range b.ByRole(role) {
			x, y, w, h := toPage(in.Bounds())
			pdf.Rect(x, y, w, h, "FD")
		}
	}

	// Legend
	pdf.SetFont("Helvetica", "", 7)
	lx := marginLeft
	ly := pageHeight - marginBottom + 3
	for _, role := range part.Roles {
		col := roleColors[role]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(lx, ly, 3, 3, "F")
		pdf.SetXY(lx+4, ly)
		pdf.CellFormat(25, 3, role.String(), "", 0, "L", false, 0, "")
		lx += 32
	}
}

// renderBOMTable lists the bill of materials to the right of the plan.
func renderBOMTable(pdf *fpdf.Fpdf, lines []BOMLine) {
	cols := []struct {
		title string
		width float64
	}{
		{"Role", 28}, {"Length", 18}, {"Section", 26}, {"Qty", 10},
	}

	y := drawAreaTop + qrSize - 10
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.1)
	x := tableLeft
	for _, c := range cols {
		pdf.SetXY(x, y)
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "L", true, 0, "")
		x += c.width
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range lines {
		y += rowHeight
		if y > pageHeight-marginBottom-rowHeight {
			break
		}
		cells := []string{
			l.Role.String(),
			fmt.Sprintf("%.3f", l.Length),
			fmt.Sprintf("%.3f x %.3f", l.Height, l.Width),
			fmt.Sprintf("%d", l.Count),
		}
		x = tableLeft
		for i, c := range cols {
			pdf.SetXY(x, y)
			pdf.CellFormat(c.width, rowHeight, cells[i], "1", 0, "L", false, 0, "")
			x += c.width
		}
	}
}

// renderQR places the build descriptor QR code in the top right corner.
func renderQR(pdf *fpdf.Fpdf, b *part.Building) error {
	data, err := json.Marshal(NewDescriptor(b))
	if err != nil {
		return fmt.Errorf("failed to marshal build descriptor: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + b.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, pageWidth-marginRight-qrSize, marginTop, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}
