package geom

import "math"

// Rect represents an axis-aligned rectangle.
// Min is the top-left corner, Max the bottom-right corner.
type Rect struct {
	Min, Max Point
}

// NewRect creates a rectangle from two points.
// The points are normalized so Min <= Max.
func NewRect(p1, p2 Point) Rect {
	return Rect{
		Min: Point{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y)},
		Max: Point{X: math.Max(p1.X, p2.X), Y: math.Max(p1.Y, p2.Y)},
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// IsEmpty reports whether the rect is inverted. A zero-area rect is not empty:
// it still covers the point or line it degenerates to.
func (r Rect) IsEmpty() bool {
	return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y
}

// Contains returns true if the point is inside the rectangle (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether the two rectangles overlap (touching counts).
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X <= other.Max.X && other.Min.X <= r.Max.X &&
		r.Min.Y <= other.Max.Y && other.Min.Y <= r.Max.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

// Inflate grows the rectangle by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// PointRectDistance returns the distance from p to the closest point of r,
// zero when p lies inside r.
func PointRectDistance(p Point, r Rect) float64 {
	dx := math.Max(0, math.Max(r.Min.X-p.X, p.X-r.Max.X))
	dy := math.Max(0, math.Max(r.Min.Y-p.Y, p.Y-r.Max.Y))
	return math.Hypot(dx, dy)
}

// PointSegmentDistance returns the distance from p to the segment a-b.
func PointSegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Lerp(b, t))
}

// SegmentIntersectsRect reports whether the segment a-b touches r.
// Uses Liang-Barsky clipping against the rectangle's slabs.
func SegmentIntersectsRect(a, b Point, r Rect) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	t0, t1 := 0.0, 1.0
	d := b.Sub(a)
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}
	return clip(-d.X, a.X-r.Min.X) &&
		clip(d.X, r.Max.X-a.X) &&
		clip(-d.Y, a.Y-r.Min.Y) &&
		clip(d.Y, r.Max.Y-a.Y)
}

// SegmentRectDistance returns the shortest distance between the segment a-b
// and the rectangle r, zero when they intersect.
func SegmentRectDistance(a, b Point, r Rect) float64 {
	if SegmentIntersectsRect(a, b, r) {
		return 0
	}
	// Disjoint convex shapes: the closest pair always involves a vertex.
	best := math.Min(PointRectDistance(a, r), PointRectDistance(b, r))
	corners := [4]Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
	for _, c := range corners {
		best = math.Min(best, PointSegmentDistance(c, a, b))
	}
	return best
}
