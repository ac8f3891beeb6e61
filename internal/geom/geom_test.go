package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestMidpoint(t *testing.T) {
	assert.Equal(t, Pt(5, 5), Midpoint(Pt(0, 0), Pt(10, 10)))
	assert.Equal(t, Pt(-1, 2), Midpoint(Pt(-2, 2), Pt(0, 2)))
}

func TestRect_NewRectNormalizes(t *testing.T) {
	r := NewRect(Pt(10, 10), Pt(0, 5))
	assert.Equal(t, Pt(0, 5), r.Min)
	assert.Equal(t, Pt(10, 10), r.Max)
	assert.Equal(t, 10.0, r.Width())
	assert.Equal(t, 5.0, r.Height())
	assert.False(t, r.IsEmpty())
}

func TestRect_Intersects(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"overlap", NewRect(Pt(5, 5), Pt(15, 15)), true},
		{"touching edge", NewRect(Pt(10, 0), Pt(20, 10)), true},
		{"disjoint", NewRect(Pt(11, 11), Pt(20, 20)), false},
		{"contained", NewRect(Pt(2, 2), Pt(3, 3)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Intersects(tt.other))
			assert.Equal(t, tt.want, tt.other.Intersects(r))
		})
	}
}

func TestHitSlop_Apply(t *testing.T) {
	h := HitSlop{Top: 1, Left: 2, Bottom: 3, Right: 4}
	r := h.Apply(Pt(10, 10))
	assert.Equal(t, Pt(8, 9), r.Min)
	assert.Equal(t, Pt(14, 13), r.Max)

	zero := HitSlop{}.Apply(Pt(3, 4))
	assert.True(t, zero.Contains(Pt(3, 4)))
	assert.Equal(t, 0.0, zero.Width())
}

func TestHitSlop_Scale(t *testing.T) {
	h := HitSlop{Top: 1, Left: 2, Bottom: 3, Right: 4}.Scale(2)
	assert.Equal(t, HitSlop{Top: 2, Left: 4, Bottom: 6, Right: 8}, h)
	assert.Equal(t, HitSlop{}, UniformHitSlop(5).Scale(0))
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"endpoint inside", Pt(5, 5), Pt(50, 50), true},
		{"crosses through", Pt(-5, 5), Pt(15, 5), true},
		{"diagonal miss", Pt(11, 0), Pt(20, 9), false},
		{"passes corner", Pt(-5, 5), Pt(5, -5), true},
		{"parallel outside", Pt(-5, 11), Pt(15, 11), false},
		{"degenerate outside", Pt(20, 20), Pt(20, 20), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentIntersectsRect(tt.a, tt.b, r))
		})
	}
}

func TestSegmentRectDistance(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))

	assert.Equal(t, 0.0, SegmentRectDistance(Pt(-5, 5), Pt(15, 5), r))
	assert.InDelta(t, 2.0, SegmentRectDistance(Pt(-5, 12), Pt(15, 12), r), epsilon)
	assert.InDelta(t, math.Sqrt2, SegmentRectDistance(Pt(11, 11), Pt(20, 20), r), epsilon)
	// Segment crossing near a corner without touching it.
	assert.InDelta(t, math.Sqrt2/2, SegmentRectDistance(Pt(11, 10), Pt(10, 11), r), epsilon)
}

func TestPointSegmentDistance(t *testing.T) {
	assert.InDelta(t, 3.0, PointSegmentDistance(Pt(5, 3), Pt(0, 0), Pt(10, 0)), epsilon)
	assert.InDelta(t, 5.0, PointSegmentDistance(Pt(13, 4), Pt(0, 0), Pt(10, 0)), epsilon)
	assert.InDelta(t, 5.0, PointSegmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)), epsilon)
}
