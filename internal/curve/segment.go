// Package curve turns an ordered point sequence into a smooth chain of
// quadratic segments that pass through consecutive midpoints.
package curve

import (
	"math"

	"github.com/inamate/inkcanvas/internal/geom"
)

// Tolerance is the maximum distance between a segment and its flattened polyline.
const Tolerance = 0.1

// maxSubdivisions bounds Flatten for very long segments.
const maxSubdivisions = 64

// Segment is a quadratic Bezier from Start to End bent towards Control.
// A segment whose three points coincide is a dot.
type Segment struct {
	Start   geom.Point `json:"start"`
	Control geom.Point `json:"control"`
	End     geom.Point `json:"end"`
}

// Eval evaluates the segment at parameter t (0 to 1).
func (s Segment) Eval(t float64) geom.Point {
	mt := 1.0 - t
	return geom.Point{
		X: mt*mt*s.Start.X + 2*mt*t*s.Control.X + t*t*s.End.X,
		Y: mt*mt*s.Start.Y + 2*mt*t*s.Control.Y + t*t*s.End.Y,
	}
}

// IsDot reports whether the segment has collapsed to a single point.
func (s Segment) IsDot() bool {
	return s.Start == s.Control && s.Control == s.End
}

// Bounds returns the bounding box of the control hull, which always
// contains the curve.
func (s Segment) Bounds() geom.Rect {
	return geom.NewRect(s.Start, s.End).Union(geom.NewRect(s.Control, s.Control))
}

// Flatten approximates the segment with a polyline whose points are within
// tolerance of the curve. The result always starts at Start and ends at End.
func (s Segment) Flatten(tolerance float64) []geom.Point {
	if s.IsDot() {
		return []geom.Point{s.Start}
	}
	if tolerance <= 0 {
		tolerance = Tolerance
	}
	// Second difference of a quadratic is constant: |P0 - 2P1 + P2|.
	dd := s.Start.Sub(s.Control.Mul(2)).Add(s.End)
	dev := math.Hypot(dd.X, dd.Y)
	n := int(math.Ceil(math.Sqrt(dev / (4 * tolerance))))
	if n < 1 {
		n = 1
	}
	if n > maxSubdivisions {
		n = maxSubdivisions
	}
	pts := make([]geom.Point, 0, n+1)
	pts = append(pts, s.Start)
	for i := 1; i < n; i++ {
		pts = append(pts, s.Eval(float64(i)/float64(n)))
	}
	return append(pts, s.End)
}

// DistanceToRect returns the distance from the segment's curve to r.
func (s Segment) DistanceToRect(r geom.Rect, tolerance float64) float64 {
	pts := s.Flatten(tolerance)
	if len(pts) == 1 {
		return geom.PointRectDistance(pts[0], r)
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		d := geom.SegmentRectDistance(pts[i-1], pts[i], r)
		if d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}
