package sdfx

import (
	"math"
	"testing"
)

// testCells keeps marching cubes cheap in tests.
const testCells = 32

func assertBounds(t *testing.T, gotMin, gotMax, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(gotMin[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, gotMin[i], wantMin[i])
		}
		if math.Abs(gotMax[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, gotMax[i], wantMax[i])
		}
	}
}

func TestBoxHasMinCornerAtOrigin(t *testing.T) {
	k := NewWithCells(testCells)
	min, max := k.Box(1, 0.2, 0.15).BoundingBox()
	assertBounds(t, min, max, [3]float64{0, 0, 0}, [3]float64{1, 0.2, 0.15}, 1e-9)
}

func TestBoxMesh(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestBoxMeshWeldsCorners(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if got, unwelded := mesh.VertexCount(), mesh.TriangleCount()*3; got >= unwelded {
		t.Errorf("vertex count %d, want fewer than %d", got, unwelded)
	}
	for _, i := range mesh.Indices {
		if int(i) >= mesh.VertexCount() {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestTranslate(t *testing.T) {
	k := NewWithCells(testCells)
	min, max := k.Translate(k.Box(0.15, 1, 0.15), -0.075, 0, -0.075).BoundingBox()
	assertBounds(t, min, max, [3]float64{-0.075, 0, -0.075}, [3]float64{0.075, 1, 0.075}, 1e-9)
}

func TestUnion(t *testing.T) {
	k := NewWithCells(testCells)
	arm := k.Box(0.3, 0.05, 0.05)
	leg := k.Translate(k.Box(0.05, 0.3, 0.05), 0, -0.3, 0)
	u := k.Union(arm, leg)

	min, max := u.BoundingBox()
	assertBounds(t, min, max, [3]float64{0, -0.3, 0}, [3]float64{0.3, 0.05, 0.05}, 1e-9)

	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestNewWithCellsFloor(t *testing.T) {
	if k := NewWithCells(1); k.cells != 8 {
		t.Errorf("cells = %d, want 8", k.cells)
	}
}
