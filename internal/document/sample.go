package document

import (
	"math"

	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/typeid"
)

// Sample colours (ARGB).
const (
	sampleInk    uint32 = 0xFF1A1A2E
	sampleAccent uint32 = 0xFFE94560
	sampleErase  uint32 = 0x00000000
)

// NewSamplePaths returns a small drawing used by the playground canvas:
// a wave, a loop, and an eraser pass across the wave.
func NewSamplePaths(drawer string) []Path {
	size := Size{Width: 1280, Height: 720}

	wave := make([]geom.Point, 0, 60)
	for i := 0; i < 60; i++ {
		x := 100 + float64(i)*18
		wave = append(wave, geom.Pt(x, 360+80*math.Sin(float64(i)/6)))
	}

	loop := make([]geom.Point, 0, 48)
	for i := 0; i <= 47; i++ {
		a := float64(i) / 47 * 2 * math.Pi
		loop = append(loop, geom.Pt(640+120*math.Cos(a), 200+120*math.Sin(a)))
	}

	erase := []geom.Point{
		geom.Pt(500, 250), geom.Pt(520, 300), geom.Pt(540, 350),
		geom.Pt(560, 400), geom.Pt(580, 450), geom.Pt(600, 500),
	}

	return []Path{
		{
			Drawer: drawer,
			Size:   size,
			Path:   PathData{ID: typeid.NewStrokeID(), Color: sampleInk, Width: 6, Points: wave},
		},
		{
			Drawer: drawer,
			Size:   size,
			Path:   PathData{ID: typeid.NewStrokeID(), Color: sampleAccent, Width: 4, Points: loop},
		},
		{
			Drawer: drawer,
			Size:   size,
			Path:   PathData{ID: typeid.NewStrokeID(), Color: sampleErase, Width: 24, Points: erase},
		},
	}
}
