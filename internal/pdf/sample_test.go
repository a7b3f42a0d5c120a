package pdf

import (
	"image"
	imgcolor "image/color"
	"testing"

	"doc-translator/internal/geom"
)

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c imgcolor.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// TestSampleBackgroundIgnoresTextPixels tests that dark glyph pixels do not
// pull the sampled color away from the page background.
func TestSampleBackgroundIgnoresTextPixels(t *testing.T) {
	// 200x200 px page at scale 2 = 100x100 pt.
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, 0, 0, 200, 200, imgcolor.RGBA{R: 255, A: 255})
	// Black "text" inside the sampled region.
	fillRect(img, 30, 130, 50, 150, imgcolor.RGBA{A: 255})

	got := sampleBackground(img, geom.NewRect(10, 10, 40, 40), 2.0)

	if got.R < 0.99 || got.G > 0.01 || got.B > 0.01 {
		t.Errorf("sampleBackground() = {%v %v %v}, want pure red", got.R, got.G, got.B)
	}
}

// TestSampleBackgroundWhitePage tests sampling a plain white region.
func TestSampleBackgroundWhitePage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, 0, 0, 200, 200, imgcolor.RGBA{R: 255, G: 255, B: 255, A: 255})

	got := sampleBackground(img, geom.NewRect(10, 10, 40, 40), 2.0)

	if got.R != 1 || got.G != 1 || got.B != 1 {
		t.Errorf("sampleBackground() = {%v %v %v}, want white", got.R, got.G, got.B)
	}
}

// TestSampleBackgroundAllDark tests the fallback to the plain average when
// every pixel is below the text threshold.
func TestSampleBackgroundAllDark(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, 0, 0, 200, 200, imgcolor.RGBA{R: 20, G: 20, B: 20, A: 255})

	got := sampleBackground(img, geom.NewRect(10, 10, 40, 40), 2.0)

	want := float32(20) / 255.0
	if got.R != want || got.G != want || got.B != want {
		t.Errorf("sampleBackground() = {%v %v %v}, want {%v %v %v}",
			got.R, got.G, got.B, want, want, want)
	}
}

// TestSampleBackgroundDegenerateRect tests that unusable rects sample white.
func TestSampleBackgroundDegenerateRect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, 0, 0, 200, 200, imgcolor.RGBA{R: 255, A: 255})

	tests := []struct {
		name string
		rect geom.Rect
	}{
		{"zero width", geom.NewRect(10, 10, 10, 40)},
		{"zero height", geom.NewRect(10, 10, 40, 10)},
		{"outside the page", geom.NewRect(-50, -50, -40, -40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleBackground(img, tt.rect, 2.0)
			if got.R != 1 || got.G != 1 || got.B != 1 {
				t.Errorf("sampleBackground() = {%v %v %v}, want white", got.R, got.G, got.B)
			}
		})
	}
}
