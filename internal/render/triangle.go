package render

import "math"

const (
	shadeAmbient = 0.40
	shadeDirect  = 0.60
)

// light direction in view space, normalized.
var lightDir = [3]float64{0.37, 0.62, 0.69}

// RasterizeTriangle fills one screen-space triangle with a flat-shaded
// solid color under a z-buffer test. Winding does not matter: the lambert
// term uses the absolute normal.
//
// Hot path, no allocation in the inner loop.
func RasterizeTriangle(fb *FrameBuffer, p0, p1, p2 [3]float64, r, g, b uint8) {
	x0, y0, z0 := p0[0], p0[1], p0[2]
	x1, y1, z1 := p1[0], p1[1], p1[2]
	x2, y2, z2 := p2[0], p2[1], p2[2]

	// Face normal for flat shading
	e1x, e1y, e1z := x1-x0, y1-y0, z1-z0
	e2x, e2y, e2z := x2-x0, y2-y0, z2-z0
	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x
	nl := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if nl < 1e-12 {
		return
	}
	ndl := math.Abs(nx*lightDir[0]+ny*lightDir[1]+nz*lightDir[2]) / nl
	shade := shadeAmbient + ndl*shadeDirect

	sr := uint8(min(float64(r)*shade, 255))
	sg := uint8(min(float64(g)*shade, 255))
	sb := uint8(min(float64(b)*shade, 255))

	// Bounding box, clamped to the framebuffer
	minX := int(math.Floor(min(x0, x1, x2)))
	maxX := int(math.Ceil(max(x0, x1, x2)))
	minY := int(math.Floor(min(y0, y1, y2)))
	maxY := int(math.Ceil(max(y0, y1, y2)))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		row := y * fb.Width
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5
			w0 := (dy12*(fx-x2) + dx21*(fy-y2)) * invDet
			w1 := (dy20*(fx-x2) + dx02*(fy-y2)) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*z0 + w1*z1 + w2*z2
			i := row + x
			if z <= fb.ZBuf[i] {
				continue
			}
			fb.ZBuf[i] = z
			o := i * 4
			fb.Color[o] = sr
			fb.Color[o+1] = sg
			fb.Color[o+2] = sb
			fb.Color[o+3] = 255
		}
	}
}
