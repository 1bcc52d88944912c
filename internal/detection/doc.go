// Package detection finds document boundaries in binary edge maps.
//
// # Contours
//
// FindContours follows every border of the foreground in a binary image
// (outer borders and hole borders alike) and returns them as one flat list
// of compressed point chains in discovery order.
//
// # Candidates
//
// Simplify reduces each contour to a polygon with the Douglas-Peucker
// algorithm, using a tolerance proportional to the contour's perimeter,
// and records the polygon's area. SelectQuadrilateral then picks the
// largest four-sided polygon above a minimum area. Ties keep the earliest
// candidate, so results depend on discovery order and are deterministic.
//
// # Coordinate System
//
// All coordinates are in pixels with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
package detection
