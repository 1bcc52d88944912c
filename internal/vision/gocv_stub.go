//go:build !gocv

package vision

func newGoCV() (Backend, error) {
	return nil, ErrUnavailable
}
