package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/chazu/timberframe/pkg/assembler"
	"github.com/chazu/timberframe/pkg/asset"
	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/kernel"
	"github.com/chazu/timberframe/pkg/kernel/sdfx"
	"github.com/chazu/timberframe/pkg/part"
)

// buildTestBuilding assembles the 5x3x4 reference building from the
// procedural templates without tessellating them.
func buildTestBuilding(t *testing.T) *part.Building {
	t.Helper()
	store := asset.NewKernelStore(sdfx.NewWithCells(16))
	store.Meshes = false
	b, err := assembler.New(store, nil, config.Default()).Build(context.Background(), part.Dimensions{Width: 5, Height: 3, Depth: 4})
	require.NoError(t, err)
	require.Equal(t, 27, b.Len())
	return b
}

func lengthsOf(lines []BOMLine, role part.Role) []float64 {
	var out []float64
	for _, l := range lines {
		if l.Role == role {
			out = append(out, l.Length)
		}
	}
	return out
}

func TestBillOfMaterials(t *testing.T) {
	lines := BillOfMaterials(buildTestBuilding(t))

	total := 0
	for _, l := range lines {
		total += l.Count
	}
	assert.Equal(t, 27, total)
	assert.Len(t, lines, 7)

	// Roles come out in pipeline order.
	for i := 1; i < len(lines); i++ {
		assert.LessOrEqual(t, lines[i-1].Role, lines[i].Role)
	}

	beams := lengthsOf(lines, part.RoleRoofBeam)
	require.Len(t, beams, 2)
	assert.InDelta(t, 5.0, beams[0], 1e-9)
	assert.InDelta(t, 4-asset.PostSize*2, beams[1], 1e-9)

	lodges := lengthsOf(lines, part.RoleRoofLodge)
	require.Len(t, lodges, 2)
	assert.InDelta(t, 5.3, lodges[0], 1e-9)
	assert.InDelta(t, 4.3-2*asset.LodgeThickness, lodges[1], 1e-9)

	posts := lengthsOf(lines, part.RoleGroundBeam)
	require.Len(t, posts, 1)
	for _, l := range lines {
		if l.Role == part.RoleGroundBeam {
			assert.Equal(t, 6, l.Count)
			assert.InDelta(t, 3.0, l.Height, 1e-9)
		}
	}
}

func TestWriteOBJ(t *testing.T) {
	tri := func(name string) *kernel.Mesh {
		return &kernel.Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			Indices:  []uint32{0, 1, 2},
			PartName: name,
		}
	}
	bare := &kernel.Mesh{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 2}}

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, []*kernel.Mesh{tri("a"), {}, bare, tri("b")}))
	out := buf.String()

	assert.Contains(t, out, "o a\n")
	assert.Contains(t, out, "o mesh-2\n")
	assert.Contains(t, out, "o b\n")
	assert.Equal(t, 9, strings.Count(out, "\nv "))
	assert.Equal(t, 6, strings.Count(out, "\nvn "))
	assert.Contains(t, out, "f 1//1 2//2 3//3\n")
	assert.Contains(t, out, "f 4 5 6\n")
	assert.Contains(t, out, "f 7//4 8//5 9//6\n")

	// Meshes with normals parse back with the asset reader.
	buf.Reset()
	require.NoError(t, WriteOBJ(&buf, []*kernel.Mesh{tri("a"), tri("b")}))
	m, err := asset.ParseOBJ(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())
	nx, ny, nz := m.Normal(0)
	assert.Equal(t, [3]float64{0, 0, 1}, [3]float64{nx, ny, nz})
}

func TestWriteYAML(t *testing.T) {
	b := buildTestBuilding(t)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, b))
	assert.Contains(t, buf.String(), "role: floor")

	l, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, b.ID, l.Building)
	assert.Equal(t, b.Dimensions, l.Dimensions)
	require.Len(t, l.Parts, 27)
	assert.Equal(t, part.RoleFloor, l.Parts[0].Role)
	assert.Equal(t, part.RoleRoofLodge, l.Parts[26].Role)
	assert.Equal(t, b.Instances()[3].ID, l.Parts[3].ID)
	assert.InDelta(t, b.Bounds().Max.Y, l.Bounds.Max.Y, 1e-9)
	assert.Len(t, l.BOM, 7)
}

func TestReadYAMLInvalid(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("parts: [{role: chimney}]"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.xlsx")
	require.NoError(t, WriteXLSX(path, buildTestBuilding(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBOM, SheetInstances}, f.GetSheetList())

	rows, err := f.GetRows(SheetBOM)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, "Role", rows[0][0])
	assert.Equal(t, "floor", rows[1][0])

	rows, err = f.GetRows(SheetInstances)
	require.NoError(t, err)
	require.Len(t, rows, 28)
	assert.Equal(t, "ground-beam", rows[2][1])
}

func TestWritePDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, WritePDF(path, buildTestBuilding(t)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}

func TestWritePDF_EmptyBuilding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := WritePDF(path, part.NewBuilding(part.Dimensions{Width: 1, Height: 1, Depth: 1}))
	assert.ErrorIs(t, err, ErrEmptyBuilding)
}

func TestDescriptorJSON(t *testing.T) {
	b := buildTestBuilding(t)
	data, err := json.Marshal(NewDescriptor(b))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, b.ID, got["building"])
	assert.Equal(t, 5.0, got["width"])
	assert.Equal(t, 27.0, got["parts"])
}

func TestWriteDXF(t *testing.T) {
	b := buildTestBuilding(t)
	path := filepath.Join(t.TempDir(), "plan.dxf")
	require.NoError(t, WriteDXF(path, b))

	d, err := dxf.Open(path)
	require.NoError(t, err)

	bounds := b.Bounds()
	lines := 0
	for _, e := range d.Entities() {
		l, ok := e.(*entity.Line)
		if !ok {
			continue
		}
		lines++
		for _, p := range [][]float64{l.Start[:], l.End[:]} {
			assert.GreaterOrEqual(t, p[0], bounds.Min.X*DXFUnits-1e-6)
			assert.LessOrEqual(t, p[0], bounds.Max.X*DXFUnits+1e-6)
			assert.GreaterOrEqual(t, p[1], -bounds.Max.Z*DXFUnits-1e-6)
			assert.LessOrEqual(t, p[1], -bounds.Min.Z*DXFUnits+1e-6)
		}
	}
	assert.Equal(t, 4*b.Len(), lines)
}

func TestWriteDXF_EmptyBuilding(t *testing.T) {
	err := WriteDXF(filepath.Join(t.TempDir(), "empty.dxf"), part.NewBuilding(part.Dimensions{Width: 1, Height: 1, Depth: 1}))
	assert.ErrorIs(t, err, ErrEmptyBuilding)
}
