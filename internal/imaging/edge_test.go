package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createStepImage creates a grayscale image that is black left of column
// split and white from it onward.
func createStepImage(width, height, split int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := split; x < width; x++ {
			img.SetGray(x, y, color.Gray{255})
		}
	}
	return img
}

func TestCanny_UniformImage(t *testing.T) {
	gray := Grayscale(createInMemoryImage(40, 30, color.RGBA{128, 128, 128, 255}))

	edges := Canny(gray, 50, 150)
	for i, v := range edges.Pix {
		if v != 0 {
			t.Fatalf("uniform image produced an edge at index %d", i)
		}
	}
}

func TestCanny_StepEdgeIsOnePixelWide(t *testing.T) {
	edges := Canny(createStepImage(20, 20, 10), 50, 150)

	if b := edges.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("dimensions: got %dx%d, want 20x20", b.Dx(), b.Dy())
	}
	for y := 0; y < 20; y++ {
		var cols []int
		for x := 0; x < 20; x++ {
			if edges.GrayAt(x, y).Y == 255 {
				cols = append(cols, x)
			}
		}
		if len(cols) != 1 || cols[0] != 9 {
			t.Errorf("row %d: edge columns %v, want [9]", y, cols)
		}
	}
}

func TestCanny_HighThresholdSuppressesEdges(t *testing.T) {
	// A step of 10 grey levels yields a Sobel magnitude of 40.
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(100)
			if x >= 10 {
				v = 110
			}
			img.SetGray(x, y, color.Gray{v})
		}
	}

	if n := countNonZero(Canny(img, 50, 150)); n != 0 {
		t.Errorf("weak step: got %d edge pixels, want 0", n)
	}
	if n := countNonZero(Canny(img, 10, 30)); n == 0 {
		t.Error("weak step with low thresholds: got no edge pixels")
	}
}

func TestCanny_SmallImage(t *testing.T) {
	edges := Canny(image.NewGray(image.Rect(0, 0, 1, 1)), 50, 150)
	if b := edges.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("dimensions: got %dx%d, want 1x1", b.Dx(), b.Dy())
	}
}

func TestNewEdgeDetectResult(t *testing.T) {
	edges := Canny(createStepImage(20, 20, 10), 50, 150)

	result, err := NewEdgeDetectResult(edges)
	if err != nil {
		t.Fatalf("NewEdgeDetectResult failed: %v", err)
	}
	if result.Width != 20 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", result.Width, result.Height)
	}
	if result.EdgePixels != 20 {
		t.Errorf("edge pixels: got %d, want 20", result.EdgePixels)
	}
	if result.MimeType != "image/png" || result.ImageBase64 == "" {
		t.Errorf("unexpected encoding: mime=%s, len=%d", result.MimeType, len(result.ImageBase64))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := clamp(tt.val, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

func countNonZero(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
