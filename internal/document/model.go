// Package document holds the interchange shapes strokes are exported to and
// imported from. Field names are shared with existing consumers and must not
// change.
package document

import "github.com/inamate/inkcanvas/internal/geom"

// PathData is the serializable projection of one stroke. Width and points
// are in device-independent units.
type PathData struct {
	ID     string       `json:"id"`
	Color  uint32       `json:"color"`
	Width  float64      `json:"width"`
	Points []geom.Point `json:"points,omitempty"`
}

// Size is the logical size of the surface a path was drawn on.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Path wraps PathData with the drawing context it came from, as produced by
// getPaths and accepted by addPaths.
type Path struct {
	Drawer string   `json:"drawer,omitempty"`
	Size   Size     `json:"size"`
	Path   PathData `json:"path"`
}

// Canvas is a full export of a canvas.
type Canvas struct {
	ID    string     `json:"id"`
	Size  Size       `json:"size"`
	Depth int        `json:"depth"`
	Paths []PathData `json:"paths"`
}

// Scale returns the factor that maps coordinates drawn on a surface of size
// from onto a surface of width to. A zero source width means no scaling.
func Scale(from Size, toWidth float64) float64 {
	if from.Width <= 0 || toWidth <= 0 {
		return 1
	}
	return toWidth / from.Width
}
