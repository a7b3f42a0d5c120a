package pdf

import (
	"image"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"

	"doc-translator/internal/geom"
)

// textLumaThreshold separates text strokes (dark) from background when
// sampling cover colors, on a 0..255 brightness scale.
const textLumaThreshold = 40

// sampleBackground estimates the background color under rect by averaging
// the non-dark pixels of the rendered page. Dark pixels are assumed to be
// the text being covered. scale is pixels per PDF point; rect is in PDF
// space (origin bottom-left), the image's origin is top-left.
func sampleBackground(img image.Image, rect geom.Rect, scale float64) color.SimpleColor {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	x0 := int(rect.X1 * scale)
	x1 := int(rect.X2 * scale)
	y0 := h - int(rect.Y2*scale)
	y1 := h - int(rect.Y1*scale)

	x0 = clamp(x0, 0, w-1)
	x1 = clamp(x1, 0, w)
	y0 = clamp(y0, 0, h-1)
	y1 = clamp(y1, 0, h)

	if x1 <= x0+1 || y1 <= y0+1 {
		return color.White
	}

	var bgR, bgG, bgB, bgN uint64
	var allR, allG, allB, allN uint64

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r16, g16, b16, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8, g8, b8 := r16>>8, g16>>8, b16>>8

			allR += uint64(r8)
			allG += uint64(g8)
			allB += uint64(b8)
			allN++

			if (r8+g8+b8)/3 > textLumaThreshold {
				bgR += uint64(r8)
				bgG += uint64(g8)
				bgB += uint64(b8)
				bgN++
			}
		}
	}

	// All-dark rects (solid black boxes) fall back to the plain average.
	if bgN == 0 {
		if allN == 0 {
			return color.White
		}
		bgR, bgG, bgB, bgN = allR, allG, allB, allN
	}

	return color.SimpleColor{
		R: float32(bgR/bgN) / 255.0,
		G: float32(bgG/bgN) / 255.0,
		B: float32(bgB/bgN) / 255.0,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
