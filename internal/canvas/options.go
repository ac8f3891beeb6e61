package canvas

import (
	"log/slog"

	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

// Option configures a Canvas.
type Option func(*options)

type options struct {
	id      string
	density float64
	size    document.Size
	style   GraphicsState
	hitSlop geom.HitSlop
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		density: 1,
		style:   GraphicsState{StrokeColor: stroke.Black, StrokeWidth: 3},
		logger:  slog.Default(),
	}
}

// WithID names the canvas. The id is only used in logs and exports.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithDensity sets the pixel density used to convert between canvas pixels
// and the device-independent units of the interchange format.
// Non-positive values are ignored.
func WithDensity(d float64) Option {
	return func(o *options) {
		if d > 0 {
			o.density = d
		}
	}
}

// WithSize sets the logical (device-independent) size of the surface.
// Imported paths are scaled by the ratio of this width to theirs.
func WithSize(width, height float64) Option {
	return func(o *options) { o.size = document.Size{Width: width, Height: height} }
}

// WithDefaultStyle sets the base graphics state for new strokes.
func WithDefaultStyle(color stroke.Color, width float64) Option {
	return func(o *options) { o.style = GraphicsState{StrokeColor: color, StrokeWidth: width} }
}

// WithHitSlop sets the canvas-wide hit slop new strokes inherit.
func WithHitSlop(h geom.HitSlop) Option {
	return func(o *options) { o.hitSlop = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
