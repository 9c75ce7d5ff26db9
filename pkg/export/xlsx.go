package export

import (
	"fmt"

	"github.com/chazu/timberframe/pkg/part"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteXLSX.
const (
	SheetBOM       = "BOM"
	SheetInstances = "Instances"
)

var (
	bomHeader      = []interface{}{"Role", "Template", "Length (m)", "Height (m)", "Width (m)", "Count", "Total length (m)"}
	instanceHeader = []interface{}{"ID", "Role", "X", "Y", "Z", "Rotation", "Length (m)"}
)

// WriteXLSX saves a workbook with the bill of materials on the first sheet
// and every placed instance on the second.
func WriteXLSX(path string, b *part.Building) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetBOM); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetInstances); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	rows := [][]interface{}{bomHeader}
	for _, l := range BillOfMaterials(b) {
		rows = append(rows, []interface{}{
			l.Role.String(), l.Template, round3(l.Length), round3(l.Height), round3(l.Width), l.Count, round3(l.TotalLength()),
		})
	}
	if err := writeRows(f, SheetBOM, rows); err != nil {
		return err
	}

	rows = [][]interface{}{instanceHeader}
	for _, in := range b.Instances() {
		p := in.Transform.Position
		rows = append(rows, []interface{}{
			in.ID, in.Role.String(), round3(p.X), round3(p.Y), round3(p.Z), in.Transform.Rotation, round3(in.Length()),
		})
	}
	if err := writeRows(f, SheetInstances, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, ref, cell); err != nil {
				return fmt.Errorf("setting %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

func round3(v float64) float64 {
	return float64(mm(v)) / 1000
}
