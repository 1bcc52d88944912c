//go:build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/doc-scanner-mcp/internal/geometry"
	"github.com/ironsheep/doc-scanner-mcp/internal/imaging"
)

// GoCV implements Backend with OpenCV. Every Mat created by a call is
// closed before the call returns.
type GoCV struct{}

var _ Backend = GoCV{}

func newGoCV() (Backend, error) {
	return GoCV{}, nil
}

func (GoCV) Name() string { return NameGoCV }

func (GoCV) Grayscale(img image.Image) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	// ImageToMatRGBA stores pixels in OpenCV's BGRA order.
	gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	return matToGray(gray)
}

func (GoCV) AdaptiveThreshold(gray *image.Gray, blockSize int, c float64) (*image.Gray, error) {
	src, err := grayToMat(gray)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.AdaptiveThreshold(src, &dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, blockSize, float32(c))
	return matToGray(dst)
}

func (GoCV) MorphClose(bin *image.Gray, size int) (*image.Gray, error) {
	src, err := grayToMat(bin)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(size, size))
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MorphologyEx(src, &dst, gocv.MorphClose, kernel)
	return matToGray(dst)
}

func (GoCV) Canny(gray *image.Gray, low, high float64) (*image.Gray, error) {
	src, err := grayToMat(gray)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(low), float32(high))
	return matToGray(dst)
}

func (GoCV) FindContours(bin *image.Gray) ([]geometry.Contour, error) {
	src, err := grayToMat(bin)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	found := gocv.FindContours(src, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]geometry.Contour, 0, found.Size())
	for _, pts := range found.ToPoints() {
		c := make(geometry.Contour, len(pts))
		for i, p := range pts {
			c[i] = geometry.Point{X: p.X, Y: p.Y}
		}
		contours = append(contours, c)
	}
	return contours, nil
}

func (GoCV) WarpPerspective(src image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	mat, err := gocv.ImageToMatRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer mat.Close()

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i, v := range h {
		m.SetDoubleAt(i/3, i%3, v)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(mat, &dst, m, image.Pt(width, height))

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mat to image: %w", err)
	}
	return out, nil
}

// grayToMat copies gray into a single-channel Mat owned by the caller.
func grayToMat(gray *image.Gray) (gocv.Mat, error) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(data[y*w:(y+1)*w], gray.Pix[y*gray.Stride:])
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create mat: %w", err)
	}
	return mat, nil
}

// matToGray copies a single-channel Mat into a new Gray image.
func matToGray(mat gocv.Mat) (*image.Gray, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mat to image: %w", err)
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}
	return imaging.Grayscale(img), nil
}
