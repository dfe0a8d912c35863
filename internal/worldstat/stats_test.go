package worldstat

import (
	"testing"

	"wld-viewer/internal/wld"
)

func testWorld() *wld.World {
	return &wld.World{
		Name:            "test",
		BackgroundColor: 0xFF000000,
		HasEngineBuild:  true,
		EngineBuild:     107,
		Brushes: []wld.Brush{
			{ID: 0, Mips: []wld.BrushMip{
				{MaxDistance: wld.DefaultMipDistance, Sectors: []wld.Sector{
					{
						Vertices: []wld.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 2, 0}, {0, 2, -1}},
						Polygons: []wld.Polygon{
							{ // strip: 6 elements, 4 triangles
								Vertices: []wld.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 2, 0}},
								Indices:  []int32{0, 1, 2, 0, 2, 3},
							},
							{ // fan: 4 vertices, 2 triangles
								Vertices: []wld.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 2, 0}, {0, 2, -1}},
							},
							{}, // empty-geometry polygon (legacy version)
						},
					},
				}},
			}},
		},
	}
}

func TestCollect(t *testing.T) {
	st := Collect(testWorld())

	if st.Brushes != 1 || st.Mips != 1 || st.Sectors != 1 {
		t.Fatalf("counts = %+v", st)
	}
	if st.Polygons != 3 {
		t.Fatalf("polygons = %d", st.Polygons)
	}
	if st.Vertices != 4 {
		t.Fatalf("vertices = %d", st.Vertices)
	}
	if st.Triangles != 6 {
		t.Fatalf("triangles = %d", st.Triangles)
	}
	if st.EngineBuild != 107 {
		t.Fatalf("engine build = %d", st.EngineBuild)
	}
	if !st.HasBounds {
		t.Fatal("no bounds")
	}
	if st.Min != [3]float64{0, 0, -1} || st.Max != [3]float64{4, 2, 0} {
		t.Fatalf("bounds = %v .. %v", st.Min, st.Max)
	}
}

func TestCollectEmptyWorld(t *testing.T) {
	st := Collect(&wld.World{})
	if st.HasBounds {
		t.Fatal("bounds reported for empty world")
	}
	if st.Brushes != 0 || st.Triangles != 0 {
		t.Fatalf("counts = %+v", st)
	}
	if st.EngineBuild != 0 {
		t.Fatalf("engine build = %d", st.EngineBuild)
	}
}

func TestTriangleCount(t *testing.T) {
	if n := TriangleCount(wld.Polygon{Indices: []int32{0, 1}}); n != 0 {
		t.Fatalf("degenerate strip = %d", n)
	}
	if n := TriangleCount(wld.Polygon{Vertices: []wld.Vec3{{}, {}}}); n != 0 {
		t.Fatalf("degenerate fan = %d", n)
	}
}
