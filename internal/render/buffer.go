package render

import "math"

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a buffer filled with the given opaque background
// color and a -inf z-buffer.
func NewFrameBuffer(w, h int, bgR, bgG, bgB uint8) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	color := make([]uint8, n*4)
	for i := 0; i < n; i++ {
		color[i*4] = bgR
		color[i*4+1] = bgG
		color[i*4+2] = bgB
		color[i*4+3] = 255
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  color,
		ZBuf:   zbuf,
	}
}

// SplitARGB unpacks a WLD 32-bit color. The alpha channel lives in the high
// byte.
func SplitARGB(c uint32) (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}
