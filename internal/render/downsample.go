package render

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a supersampled frame down to size×size with a
// Catmull-Rom kernel. The scaler works on premultiplied alpha, so convert
// on the way in and back out.
func Downsample(src *image.NRGBA, size int) *image.NRGBA {
	pre := image.NewRGBA(src.Rect)
	for i := 0; i < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3])
		pre.Pix[i] = uint8(uint32(src.Pix[i]) * a / 255)
		pre.Pix[i+1] = uint8(uint32(src.Pix[i+1]) * a / 255)
		pre.Pix[i+2] = uint8(uint32(src.Pix[i+2]) * a / 255)
		pre.Pix[i+3] = uint8(a)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Rect, pre, pre.Rect, draw.Src, nil)

	out := image.NewNRGBA(scaled.Rect)
	for i := 0; i < len(scaled.Pix); i += 4 {
		a := uint32(scaled.Pix[i+3])
		if a == 0 {
			continue
		}
		out.Pix[i] = clamp8(uint32(scaled.Pix[i]) * 255 / a)
		out.Pix[i+1] = clamp8(uint32(scaled.Pix[i+1]) * 255 / a)
		out.Pix[i+2] = clamp8(uint32(scaled.Pix[i+2]) * 255 / a)
		out.Pix[i+3] = uint8(a)
	}
	return out
}

func clamp8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
