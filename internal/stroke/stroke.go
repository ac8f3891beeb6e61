// Package stroke implements a single freehand stroke: its points, the curve
// built from them, its style and per-stroke save/restore snapshots.
//
// A Stroke is not safe for concurrent use; it is owned and serialised by the
// canvas that created it.
package stroke

import (
	"github.com/inamate/inkcanvas/internal/curve"
	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/hittest"
)

// Stroke is one continuous freehand path.
type Stroke struct {
	id     string
	drawer string

	points   []geom.Point
	geometry curve.Geometry

	style *Stack[Style]

	hitSlop           geom.HitSlop
	hitSlopOverridden bool

	dirty  bool
	commit commit
}

// New creates an empty stroke. depth is the save depth of the owning canvas,
// so the stroke's snapshot stack starts aligned with it.
func New(id string, style Style, hitSlop geom.HitSlop, depth int) *Stroke {
	return &Stroke{
		id:      id,
		style:   NewStack(style, depth),
		hitSlop: hitSlop,
		dirty:   true,
	}
}

func (s *Stroke) ID() string { return s.id }

// Drawer is the user the stroke is attributed to, if any.
func (s *Stroke) Drawer() string { return s.drawer }

func (s *Stroke) SetDrawer(drawer string) { s.drawer = drawer }

// Points returns the points in drawing order. The slice must not be modified.
func (s *Stroke) Points() []geom.Point { return s.points }

// Geometry returns the curve built from the points.
func (s *Stroke) Geometry() *curve.Geometry { return &s.geometry }

func (s *Stroke) Style() Style { return s.style.Current() }

func (s *Stroke) Color() Color { return s.style.Current().Color }

func (s *Stroke) Width() float64 { return s.style.Current().Width }

func (s *Stroke) IsEraser() bool { return s.style.Current().IsEraser() }

// EffectiveHitSlop returns the hit slop used for hit testing.
func (s *Stroke) EffectiveHitSlop() geom.HitSlop { return s.hitSlop }

// HitSlopOverridden reports whether an explicit hit slop has been assigned.
func (s *Stroke) HitSlopOverridden() bool { return s.hitSlopOverridden }

// Depth returns the number of snapshot levels.
func (s *Stroke) Depth() int { return s.style.Depth() }

// Dirty reports whether the stroke changed since it was last rendered.
func (s *Stroke) Dirty() bool { return s.dirty }

func (s *Stroke) MarkClean() { s.dirty = false }

// AppendPoint adds p and extends the curve by one segment.
func (s *Stroke) AppendPoint(p geom.Point) {
	s.points = append(s.points, p)
	s.geometry.Append(s.points)
	s.dirty = true
}

// SetPoints replaces every point and rebuilds the curve.
func (s *Stroke) SetPoints(points []geom.Point) {
	s.points = append(s.points[:0:0], points...)
	s.geometry.Rebuild(s.points)
	s.dirty = true
}

// SetStyle updates whichever of color and width is non-nil.
func (s *Stroke) SetStyle(color *Color, width *float64) {
	next := s.style.Current()
	if color != nil {
		next.Color = *color
	}
	if width != nil {
		next.Width = *width
	}
	if s.style.Set(next) {
		s.dirty = true
	}
}

// SetHitSlop assigns h unless an explicit value was assigned earlier and
// override is false. Once override is used the stroke stops inheriting.
func (s *Stroke) SetHitSlop(h geom.HitSlop, override bool) {
	if override || !s.hitSlopOverridden {
		s.hitSlop = h
	}
	if override {
		s.hitSlopOverridden = true
	}
}

// ContainsPoint reports whether p lands on the stroke outline.
// Occlusion by other strokes is not considered.
func (s *Stroke) ContainsPoint(p geom.Point) bool {
	return hittest.PointOnStroke(p, s)
}

// Save records the current style as a new snapshot level.
func (s *Stroke) Save() int {
	return s.style.Save()
}

// Restore reverts the style to a snapshot level and reports whether the
// visible style changed.
func (s *Stroke) Restore(level int) (bool, error) {
	changed, err := s.style.Restore(level)
	if err != nil {
		return false, err
	}
	if changed {
		s.dirty = true
	}
	return changed, nil
}

// ToInterchange projects the stroke into device-independent units by
// dividing width and coordinates by density.
func (s *Stroke) ToInterchange(includePoints bool, density float64) document.PathData {
	if density <= 0 {
		density = 1
	}
	st := s.style.Current()
	data := document.PathData{
		ID:    s.id,
		Color: uint32(st.Color),
		Width: st.Width / density,
	}
	if includePoints {
		data.Points = make([]geom.Point, len(s.points))
		for i, p := range s.points {
			data.Points[i] = p.Mul(1 / density)
		}
	}
	return data
}

// Snapshot is an immutable copy of what a renderer needs from a stroke.
type Snapshot struct {
	ID       string
	Style    Style
	Segments []curve.Segment
	Dirty    bool
}

// Snapshot copies the stroke's render state.
func (s *Stroke) Snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Style:    s.style.Current(),
		Segments: append([]curve.Segment(nil), s.geometry.Segments()...),
		Dirty:    s.dirty,
	}
}

var _ hittest.Target = (*Stroke)(nil)
