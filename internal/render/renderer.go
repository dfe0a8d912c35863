// Package render draws a decoded world into an image: a flat-shaded
// orthographic preview used for thumbnails and the viewer.
package render

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"

	"wld-viewer/internal/wld"
)

// Options controls one render pass.
type Options struct {
	Size        int     // output edge length in pixels, square
	Supersample int     // internal oversampling factor, <=1 disables
	Yaw         float64 // camera yaw in degrees, around the Y axis
	Pitch       float64 // camera pitch in degrees, around the X axis
}

// DefaultOptions are tuned for catalog thumbnails.
var DefaultOptions = Options{
	Size:        512,
	Supersample: 2,
	Yaw:         30,
	Pitch:       -25,
}

const frameMargin = 0.05 // fraction of the edge kept clear around the model

// RenderWorld projects the highest-detail mip of every brush through an
// orthographic camera and rasterizes it. A world with no geometry yields a
// plain background image.
func RenderWorld(w *wld.World, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions.Size
	}
	ss := max(opts.Supersample, 1)
	edge := opts.Size * ss

	bgR, bgG, bgB, _ := SplitARGB(w.BackgroundColor)
	fb := NewFrameBuffer(edge, edge, bgR, bgG, bgB)

	cam := newCamera(w, opts, float64(edge))
	if cam != nil {
		for _, br := range w.Brushes {
			if len(br.Mips) == 0 {
				continue
			}
			for _, s := range br.Mips[0].Sectors {
				renderSector(fb, cam, s)
			}
		}
	}

	img := &image.NRGBA{
		Pix:    fb.Color,
		Stride: edge * 4,
		Rect:   image.Rect(0, 0, edge, edge),
	}
	if ss > 1 {
		img = Downsample(img, opts.Size)
	}
	return img
}

// camera maps world coordinates to screen space: rotate, center, scale.
type camera struct {
	rot    mgl64.Mat3
	center mgl64.Vec3
	scale  float64
	half   float64
}

// newCamera fits the world's rotated bounding box into the frame. Returns
// nil when there is nothing to draw.
func newCamera(w *wld.World, opts Options, edge float64) *camera {
	rot := mgl64.Rotate3DX(mgl64.DegToRad(opts.Pitch)).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(opts.Yaw)))

	var lo, hi mgl64.Vec3
	seen := false
	for _, br := range w.Brushes {
		if len(br.Mips) == 0 {
			continue
		}
		for _, s := range br.Mips[0].Sectors {
			for _, v := range s.Vertices {
				t := rot.Mul3x1(v)
				if !seen {
					lo, hi = t, t
					seen = true
					continue
				}
				lo = mgl64.Vec3{min(lo.X(), t.X()), min(lo.Y(), t.Y()), min(lo.Z(), t.Z())}
				hi = mgl64.Vec3{max(hi.X(), t.X()), max(hi.Y(), t.Y()), max(hi.Z(), t.Z())}
			}
		}
	}
	if !seen {
		return nil
	}

	span := max(hi.X()-lo.X(), hi.Y()-lo.Y())
	if span < 1e-9 {
		span = 1
	}
	return &camera{
		rot:    rot,
		center: lo.Add(hi).Mul(0.5),
		scale:  edge * (1 - 2*frameMargin) / span,
		half:   edge / 2,
	}
}

// project maps one world vertex to screen space. Y flips so world up is
// screen up; depth grows toward the viewer.
func (c *camera) project(v wld.Vec3) [3]float64 {
	t := c.rot.Mul3x1(v).Sub(c.center)
	return [3]float64{
		c.half + t.X()*c.scale,
		c.half - t.Y()*c.scale,
		t.Z() * c.scale,
	}
}

// renderSector rasterizes every polygon of one sector. Polygons carrying
// strip indices resolve against the sector vertex pool; the rest are drawn
// as a fan over their own vertices.
func renderSector(fb *FrameBuffer, cam *camera, s wld.Sector) {
	for _, p := range s.Polygons {
		r, g, b, _ := SplitARGB(p.Color)
		if len(p.Indices) > 0 {
			for i := 0; i+2 < len(p.Indices); i++ {
				i0, i1, i2 := p.Indices[i], p.Indices[i+1], p.Indices[i+2]
				if !indexOK(i0, s) || !indexOK(i1, s) || !indexOK(i2, s) {
					continue
				}
				RasterizeTriangle(fb, cam.project(s.Vertices[i0]),
					cam.project(s.Vertices[i1]), cam.project(s.Vertices[i2]), r, g, b)
			}
			continue
		}
		for i := 1; i+1 < len(p.Vertices); i++ {
			RasterizeTriangle(fb, cam.project(p.Vertices[0]),
				cam.project(p.Vertices[i]), cam.project(p.Vertices[i+1]), r, g, b)
		}
	}
}

func indexOK(i int32, s wld.Sector) bool {
	return i >= 0 && int(i) < len(s.Vertices)
}
