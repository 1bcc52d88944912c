package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"red", color.RGBA{255, 0, 0, 255}, 76},
		{"green", color.RGBA{0, 255, 0, 255}, 150},
		{"blue", color.RGBA{0, 0, 255, 255}, 29},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray := Grayscale(createInMemoryImage(3, 2, tt.c))
			if b := gray.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
				t.Fatalf("dimensions: got %dx%d, want 3x2", b.Dx(), b.Dy())
			}
			if got := gray.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("luma: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGaussianSigma(t *testing.T) {
	if got := GaussianSigma(11); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("GaussianSigma(11) = %v, want 2.0", got)
	}
	if got := GaussianSigma(3); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("GaussianSigma(3) = %v, want 0.8", got)
	}
}

func TestGaussianWeights_Normalized(t *testing.T) {
	w := gaussianWeights(11, 2.0)
	var sum float64
	for _, v := range w {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
	if w[5] <= w[4] || w[0] != w[10] {
		t.Errorf("weights not symmetric with a central peak: %v", w)
	}
}

func TestAdaptiveThreshold_Uniform(t *testing.T) {
	for _, level := range []uint8{0, 128, 255} {
		gray := image.NewGray(image.Rect(0, 0, 30, 30))
		for i := range gray.Pix {
			gray.Pix[i] = level
		}

		out := AdaptiveThreshold(gray, 11, 2)
		for i, v := range out.Pix {
			if v != 255 {
				t.Fatalf("level %d: pixel %d = %d, want 255", level, i, v)
			}
		}
	}
}

func TestAdaptiveThreshold_DarkSideOfEdge(t *testing.T) {
	gray := createStepImage(40, 10, 20)
	out := AdaptiveThreshold(gray, 11, 2)

	// Just left of the step the local mean is well above 0.
	if v := out.GrayAt(19, 5).Y; v != 0 {
		t.Errorf("dark pixel beside edge: got %d, want 0", v)
	}
	// Far from the step the neighbourhood is uniform.
	if v := out.GrayAt(2, 5).Y; v != 255 {
		t.Errorf("dark pixel far from edge: got %d, want 255", v)
	}
	// The bright side always passes.
	for x := 20; x < 40; x++ {
		if v := out.GrayAt(x, 5).Y; v != 255 {
			t.Errorf("bright pixel %d: got %d, want 255", x, v)
		}
	}
}

func TestMorphClose(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}
	// A one pixel dark line and a nine pixel dark band.
	for y := 0; y < 40; y++ {
		gray.SetGray(5, y, color.Gray{0})
		for x := 20; x < 29; x++ {
			gray.SetGray(x, y, color.Gray{0})
		}
	}

	closed := MorphClose(gray, 5)

	if v := closed.GrayAt(5, 20).Y; v != 255 {
		t.Errorf("thin gap not closed: got %d, want 255", v)
	}
	if v := closed.GrayAt(24, 20).Y; v != 0 {
		t.Errorf("wide band centre: got %d, want 0", v)
	}
	if v := gray.GrayAt(5, 20).Y; v != 0 {
		t.Error("MorphClose modified its input")
	}
}

func TestMorphClose_KernelOfOne(t *testing.T) {
	gray := createStepImage(10, 10, 5)
	closed := MorphClose(gray, 1)
	for i := range gray.Pix {
		if closed.Pix[i] != gray.Pix[i] {
			t.Fatalf("pixel %d changed: got %d, want %d", i, closed.Pix[i], gray.Pix[i])
		}
	}
}
