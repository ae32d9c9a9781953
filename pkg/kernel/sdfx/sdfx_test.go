package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/csgtree/pkg/vmath"
)

// newTestKernel keeps marching cubes coarse so tests stay fast.
func newTestKernel() *SdfxKernel {
	return New(WithMeshCells(64))
}

func assertBounds3(t *testing.T, s interface{ BoundingBox() (min, max [3]float64) }, wantMin, wantMax [3]float64) {
	t.Helper()
	const tol = 0.01
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], wantMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.VertexCount() == 0 {
		t.Fatal("expected non-zero vertex count")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestCylinder(t *testing.T) {
	k := newTestKernel()
	cyl := k.Cylinder(50, 10, 32)
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestDifference(t *testing.T) {
	k := newTestKernel()

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := k.Cylinder(120, 20, 32)
	diff := k.Difference(box, cyl)
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
	t.Logf("box triangles: %d, difference triangles: %d", boxMesh.TriangleCount(), diffMesh.TriangleCount())
}

func TestUnion(t *testing.T) {
	k := newTestKernel()
	box1 := k.Box(50, 50, 50)
	box2 := k.Translate(k.Box(50, 50, 50), 30, 0, 0)
	u := k.Union(box1, box2)
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestTranslate(t *testing.T) {
	k := newTestKernel()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// Translated box(10,10,10) by (100,200,300) should be centered at (100,200,300).
	// So bounds should be approximately (95,195,295) to (105,205,305).
	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-50, -25, -12.5}
	expectMax := [3]float64{50, 25, 12.5}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestIntersection(t *testing.T) {
	k := newTestKernel()
	box1 := k.Box(100, 100, 100)
	box2 := k.Translate(k.Box(100, 100, 100), 50, 0, 0)
	inter := k.Intersection(box1, box2)
	mesh, err := k.ToMesh(inter)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
	t.Logf("intersection triangle count: %d", mesh.TriangleCount())
}

func TestRotate(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	// After 90-degree Z rotation, the X extent should be small and Y extent large.
	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestSphereAndCone(t *testing.T) {
	k := newTestKernel()
	assertBounds3(t, k.Sphere(5), [3]float64{-5, -5, -5}, [3]float64{5, 5, 5})
	assertBounds3(t, k.Cone(10, 4, 2), [3]float64{-4, -4, -5}, [3]float64{4, 4, 5})
	assertBounds3(t, k.Cone(10, 3, 3), [3]float64{-3, -3, -5}, [3]float64{3, 3, 5})

	mesh, err := k.ToMesh(k.Cone(10, 4, 0))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("cone mesh is empty")
	}
}

func TestExtrude(t *testing.T) {
	k := newTestKernel()
	rect := k.Rect(10, 20)
	assertBounds3(t, k.Extrude(rect, 4, 0, 1), [3]float64{-5, -10, -2}, [3]float64{5, 10, 2})

	twisted := k.Extrude(k.Circle(3), 6, 90, 1)
	mesh, err := k.ToMesh(twisted)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("twisted extrusion mesh is empty")
	}

	scaled := k.Extrude(k.Circle(3), 6, 0, 0.5)
	if _, err := k.ToMesh(scaled); err != nil {
		t.Fatalf("ToMesh(scaled) failed: %v", err)
	}
}

func TestPolygon(t *testing.T) {
	k := newTestKernel()
	outer := []vmath.Vec2{vmath.V2(-10, -10), vmath.V2(10, -10), vmath.V2(10, 10), vmath.V2(-10, 10)}
	hole := []vmath.Vec2{vmath.V2(-2, -2), vmath.V2(2, -2), vmath.V2(2, 2), vmath.V2(-2, 2)}

	s, err := k.Polygon(outer, hole)
	if err != nil {
		t.Fatalf("Polygon failed: %v", err)
	}
	min, max := s.BoundingBox()
	if math.Abs(min[0]+10) > 0.01 || math.Abs(max[1]-10) > 0.01 {
		t.Errorf("polygon bounds = %v %v, expected +-10", min, max)
	}

	tests := []struct {
		name     string
		outlines [][]vmath.Vec2
	}{
		{"no outlines", nil},
		{"two points", [][]vmath.Vec2{{vmath.V2(0, 0), vmath.V2(1, 0)}}},
		{"degenerate hole", [][]vmath.Vec2{outer, {vmath.V2(0, 0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := k.Polygon(tt.outlines...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPlanarOperations(t *testing.T) {
	k := newTestKernel()
	a := k.Rect(10, 10)
	b := k.Transform2(k.Rect(10, 10), vmath.Translate2(5, 0))

	min, max := k.Union2(a, b).BoundingBox()
	if math.Abs(min[0]+5) > 0.01 || math.Abs(max[0]-10) > 0.01 {
		t.Errorf("union bounds x = [%f, %f], expected [-5, 10]", min[0], max[0])
	}
	if _, err := k.ToMesh(k.Extrude(k.Intersection2(a, b), 2, 0, 1)); err != nil {
		t.Fatalf("ToMesh(intersection) failed: %v", err)
	}
	if _, err := k.ToMesh(k.Extrude(k.Difference2(a, b), 2, 0, 1)); err != nil {
		t.Fatalf("ToMesh(difference) failed: %v", err)
	}
}

func TestRevolve(t *testing.T) {
	k := newTestKernel()
	ring := k.Transform2(k.Rect(2, 2), vmath.Translate2(6, 0))

	full, err := k.Revolve(ring, 360)
	if err != nil {
		t.Fatalf("Revolve failed: %v", err)
	}
	assertBounds3(t, full, [3]float64{-7, -7, -1}, [3]float64{7, 7, 1})

	half, err := k.Revolve(ring, 180)
	if err != nil {
		t.Fatalf("Revolve(180) failed: %v", err)
	}
	mesh, err := k.ToMesh(half)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("half revolution mesh is empty")
	}
}

func TestScale(t *testing.T) {
	k := newTestKernel()
	assertBounds3(t, k.Scale(k.Box(2, 2, 2), 3, 3, 3), [3]float64{-3, -3, -3}, [3]float64{3, 3, 3})
	assertBounds3(t, k.Scale(k.Box(2, 2, 2), 1, 2, 4), [3]float64{-1, -2, -4}, [3]float64{1, 2, 4})
}
