package geom

// HitSlop is an asymmetric tolerance around a touch point.
// The zero value means no tolerance.
type HitSlop struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// UniformHitSlop returns a HitSlop with the same inset on every side.
func UniformHitSlop(d float64) HitSlop {
	return HitSlop{Top: d, Left: d, Bottom: d, Right: d}
}

// Apply inflates p into the rectangle that is tested against stroke geometry.
func (h HitSlop) Apply(p Point) Rect {
	return NewRect(
		Point{X: p.X - h.Left, Y: p.Y - h.Top},
		Point{X: p.X + h.Right, Y: p.Y + h.Bottom},
	)
}

// Scale multiplies every side by s.
func (h HitSlop) Scale(s float64) HitSlop {
	return HitSlop{Top: h.Top * s, Left: h.Left * s, Bottom: h.Bottom * s, Right: h.Right * s}
}
