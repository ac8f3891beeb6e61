package curve

import "github.com/inamate/inkcanvas/internal/geom"

// Geometry is the curve model of a point sequence: one segment per point.
// It is kept consistent with its points by calling Append after every
// appended point, or Rebuild after a bulk replacement.
type Geometry struct {
	segments []Segment
	bounds   geom.Rect
}

// SegmentAt returns the segment contributed by points[i], given the points
// before it:
//
//	i == 0: a dot at points[0]
//	i == 1: points[0] (control collapsed onto the start) to mid(points[0], points[1])
//	i >= 2: mid(a, b) through control b to mid(b, c) for a, b, c = points[i-2:i+1]
func SegmentAt(points []geom.Point, i int) Segment {
	switch {
	case i >= 2:
		a, b, c := points[i-2], points[i-1], points[i]
		return Segment{Start: geom.Midpoint(a, b), Control: b, End: geom.Midpoint(b, c)}
	case i == 1:
		a, b := points[0], points[1]
		return Segment{Start: a, Control: a, End: geom.Midpoint(a, b)}
	default:
		p := points[0]
		return Segment{Start: p, Control: p, End: p}
	}
}

// Rebuild replaces the geometry with the curve for points.
func (g *Geometry) Rebuild(points []geom.Point) {
	g.segments = g.segments[:0]
	g.bounds = geom.Rect{}
	for i := range points {
		g.push(SegmentAt(points, i))
	}
}

// Append extends the geometry by the segment of the last point in points.
// points must be the full sequence, already including the new point.
func (g *Geometry) Append(points []geom.Point) {
	if len(points) == 0 {
		return
	}
	g.push(SegmentAt(points, len(points)-1))
}

func (g *Geometry) push(s Segment) {
	if len(g.segments) == 0 {
		g.bounds = s.Bounds()
	} else {
		g.bounds = g.bounds.Union(s.Bounds())
	}
	g.segments = append(g.segments, s)
}

// Reset drops every segment.
func (g *Geometry) Reset() {
	g.segments = g.segments[:0]
	g.bounds = geom.Rect{}
}

// Len returns the number of segments.
func (g *Geometry) Len() int {
	return len(g.segments)
}

// IsEmpty reports whether the geometry has no segments.
func (g *Geometry) IsEmpty() bool {
	return len(g.segments) == 0
}

// Segments returns the segments in drawing order. The slice must not be modified.
func (g *Geometry) Segments() []Segment {
	return g.segments
}

// Bounds returns the union of every segment's control hull.
// The zero Rect is returned for empty geometry.
func (g *Geometry) Bounds() geom.Rect {
	return g.bounds
}

// Clone returns an independent copy.
func (g *Geometry) Clone() *Geometry {
	c := &Geometry{bounds: g.bounds}
	c.segments = append([]Segment(nil), g.segments...)
	return c
}

// Build returns the geometry for points.
func Build(points []geom.Point) *Geometry {
	g := &Geometry{segments: make([]Segment, 0, len(points))}
	g.Rebuild(points)
	return g
}
