package render

import (
	"bytes"
	"image"
	"testing"

	"wld-viewer/internal/wld"
)

func quadWorld() *wld.World {
	return &wld.World{
		BackgroundColor: 0xFF101020,
		Brushes: []wld.Brush{
			{Mips: []wld.BrushMip{
				{Sectors: []wld.Sector{
					{
						Vertices: []wld.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
						Polygons: []wld.Polygon{{
							Color:   0xFFFF0000,
							Indices: []int32{0, 1, 3, 2},
						}},
					},
				}},
			}},
		},
	}
}

func TestRenderWorldCoversCenter(t *testing.T) {
	img := RenderWorld(quadWorld(), Options{Size: 64, Supersample: 1, Yaw: 0, Pitch: 0})

	if got := img.Rect.Dx(); got != 64 {
		t.Fatalf("width = %d", got)
	}
	c := img.NRGBAAt(32, 32)
	if c.R == 0x10 && c.G == 0x10 && c.B == 0x20 {
		t.Fatalf("center pixel still background: %+v", c)
	}
	corner := img.NRGBAAt(0, 0)
	if corner.R != 0x10 || corner.G != 0x10 || corner.B != 0x20 || corner.A != 255 {
		t.Fatalf("corner pixel not background: %+v", corner)
	}
}

func TestRenderWorldEmpty(t *testing.T) {
	img := RenderWorld(&wld.World{BackgroundColor: 0xFF0000FF}, Options{Size: 16, Supersample: 1})
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := img.NRGBAAt(x, y)
			if c.B != 0xFF || c.R != 0 || c.G != 0 {
				t.Fatalf("pixel (%d,%d) = %+v", x, y, c)
			}
		}
	}
}

func TestRenderWorldSupersample(t *testing.T) {
	img := RenderWorld(quadWorld(), Options{Size: 32, Supersample: 4})
	if img.Rect.Dx() != 32 || img.Rect.Dy() != 32 {
		t.Fatalf("bounds = %v", img.Rect)
	}
}

func TestRenderSectorSkipsBadIndices(t *testing.T) {
	w := quadWorld()
	w.Brushes[0].Mips[0].Sectors[0].Polygons[0].Indices = []int32{0, 99, -1, 2}
	// must not panic
	RenderWorld(w, Options{Size: 16, Supersample: 1})
}

func TestRasterizeTriangleDepth(t *testing.T) {
	fb := NewFrameBuffer(8, 8, 0, 0, 0)
	// far red triangle, then near green one covering the same pixels
	RasterizeTriangle(fb, [3]float64{0, 0, -5}, [3]float64{8, 0, -5}, [3]float64{0, 8, -5}, 255, 0, 0)
	RasterizeTriangle(fb, [3]float64{0, 0, 1}, [3]float64{8, 0, 1}, [3]float64{0, 8, 1}, 0, 255, 0)
	o := (2*8 + 2) * 4
	if fb.Color[o] != 0 || fb.Color[o+1] == 0 {
		t.Fatalf("z-test failed: pixel = %v", fb.Color[o:o+4])
	}
	// drawing the far one again must not overwrite
	RasterizeTriangle(fb, [3]float64{0, 0, -5}, [3]float64{8, 0, -5}, [3]float64{0, 8, -5}, 255, 0, 0)
	if fb.Color[o] != 0 {
		t.Fatalf("far triangle overwrote near one: %v", fb.Color[o:o+4])
	}
}

func TestEncodeWebPRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty webp output")
	}
}
