// Package hittest decides whether a touch point lands on visible ink.
//
// A stroke is hit when the point, inflated by the stroke's hit slop into a
// rectangle, intersects the stroke outline: the curve swept by half the
// stroke width. Erase strokes (transparent colour) are never reported as
// hit; instead they mask every stroke at or below them in draw order.
package hittest

import (
	"github.com/inamate/inkcanvas/internal/curve"
	"github.com/inamate/inkcanvas/internal/geom"
)

// Target is the read-only view of a stroke the engine needs.
type Target interface {
	ID() string
	Geometry() *curve.Geometry
	Width() float64
	EffectiveHitSlop() geom.HitSlop
	IsEraser() bool
}

// PointOnStroke reports whether p intersects t's outline, ignoring occlusion.
// Strokes without points never intersect.
func PointOnStroke(p geom.Point, t Target) bool {
	g := t.Geometry()
	if g == nil || g.IsEmpty() {
		return false
	}
	hit := t.EffectiveHitSlop().Apply(p)
	radius := t.Width() / 2
	if radius < 0 {
		radius = 0
	}
	if !g.Bounds().Inflate(radius).Intersects(hit) {
		return false
	}
	for _, s := range g.Segments() {
		if !s.Bounds().Inflate(radius).Intersects(hit) {
			continue
		}
		if s.DistanceToRect(hit, curve.Tolerance) <= radius {
			return true
		}
	}
	return false
}

// Occluded reports whether the stroke at index i is masked at p by an erase
// stroke at index i or above.
func Occluded(p geom.Point, targets []Target, i int) bool {
	for j := i; j < len(targets); j++ {
		if targets[j].IsEraser() && PointOnStroke(p, targets[j]) {
			return true
		}
	}
	return false
}

// Visible reports whether p hits the stroke at index i and the stroke is not
// occluded there. An erase stroke occludes itself, so it is never visible.
func Visible(p geom.Point, targets []Target, i int) bool {
	t := targets[i]
	if t.IsEraser() {
		return false
	}
	return PointOnStroke(p, t) && !Occluded(p, targets, i+1)
}

// PointOnCanvas returns the ids of every visible stroke under p, in draw
// order (bottom first). Callers wanting the topmost hit take the last element.
func PointOnCanvas(p geom.Point, targets []Target) []string {
	// Walk front to back: the first erase stroke under p masks everything
	// beneath it, so the scan can stop there.
	var hits []string
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if t.IsEraser() {
			if PointOnStroke(p, t) {
				break
			}
			continue
		}
		if PointOnStroke(p, t) {
			hits = append(hits, t.ID())
		}
	}
	for l, r := 0, len(hits)-1; l < r; l, r = l+1, r-1 {
		hits[l], hits[r] = hits[r], hits[l]
	}
	return hits
}
