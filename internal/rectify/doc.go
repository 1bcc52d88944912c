// Package rectify turns a photographed or rendered page into a cropped,
// perspective-corrected, portrait image.
//
// # Pipeline
//
// A run passes one image through strictly sequential stages:
//
//  1. Preprocess: grayscale, Gaussian adaptive threshold, morphological
//     closing.
//  2. DetectEdges: Canny edge map of the binarized image.
//  3. ExtractContours: border tracing, Douglas-Peucker simplification and
//     area of every contour.
//  4. SelectQuadrilateral: the largest four-vertex polygon above the
//     minimum area.
//  5. Rectify: order the corners, size the output, solve the homography and
//     warp the original colour image.
//  6. NormalizeOrientation: rotate landscape results to portrait.
//  7. RenderDebug (optional): contour and selection overlays.
//  8. Export: PNG encoding and output naming.
//
// When no quadrilateral qualifies the original image is returned unchanged
// and Result.Detected is false; this is not an error.
//
// # Errors
//
// Undecodable input fails with *InputDecodeError (errors.Is ErrInputDecode).
// A failing primitive, a singular perspective transform or an encoding
// failure yields *ProcessingError (errors.Is ErrProcessing) naming the
// stage. Debug rendering never fails a run.
//
// # Concurrency
//
// A Pipeline is immutable once built. Each Run allocates its own buffers and
// shares nothing with other runs, so one Pipeline may serve any number of
// goroutines.
package rectify
