// Package imaging provides the raster operations behind document
// rectification: decoding inputs, binarizing and edge-mapping photographs,
// warping and rotating pages, drawing inspection overlays and encoding PNG
// output.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Image Types
//
// Single-channel maps (grayscale, thresholded and edge images) are returned
// as *image.Gray with values 0 or 255 for binary maps. Colour results
// (warped pages, rotated pages, overlays) are *image.NRGBA so that alpha is
// carried through unchanged.
//
// # Input Decoding
//
// Decode accepts PNG, JPEG, GIF, TIFF, BMP and WebP bytes as well as PDF
// documents. JPEG EXIF orientation is applied on decode. For PDF input the
// first page is rasterized at twice its size in points from the page's
// largest embedded image.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless: it reads its inputs without modifying them and allocates its
// own outputs, so independent calls may run concurrently.
//
// # Error Handling
//
// Decoding errors wrap ErrEmptyInput, ErrUnsupportedFormat or ErrNoRaster
// where the cause is known. Raster operations on well-formed inputs do not
// fail; WarpPerspective reports a non-invertible transform.
package imaging
