package engine

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/inkcanvas/internal/stroke"
)

// Composite operations understood by Canvas2D hosts.
const (
	CompositeDraw  = "source-over"
	CompositeErase = "destination-out"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path" or "dot"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	X           float64       `json:"x,omitempty"`           // Centre for "dot" ops
	Y           float64       `json:"y,omitempty"`           //
	Radius      float64       `json:"radius,omitempty"`      // Dot radius (half the stroke width)
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Composite   string        `json:"composite"`             // globalCompositeOperation
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["Q", cx, cy, x, y].
type PathCommand []interface{}

// CompileDrawCommands turns stroke snapshots into draw commands in painter's
// order (back to front). Erase strokes punch through with destination-out.
func CompileDrawCommands(snaps []stroke.Snapshot) []DrawCommand {
	commands := make([]DrawCommand, 0, len(snaps))
	for _, s := range snaps {
		if cmd, ok := compileStroke(s); ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

func compileStroke(s stroke.Snapshot) (DrawCommand, bool) {
	if len(s.Segments) == 0 {
		return DrawCommand{}, false
	}

	cmd := DrawCommand{
		ObjectID:  s.ID,
		Stroke:    cssColor(s.Style.Color),
		Composite: CompositeDraw,
	}
	if s.Style.IsEraser() {
		// Any opaque colour works for destination-out.
		cmd.Stroke = "#000000"
		cmd.Composite = CompositeErase
	}

	first := s.Segments[0]
	path := []PathCommand{{"M", first.Start.X, first.Start.Y}}
	for _, seg := range s.Segments {
		if seg.IsDot() {
			continue
		}
		path = append(path, PathCommand{"Q", seg.Control.X, seg.Control.Y, seg.End.X, seg.End.Y})
	}

	// A stroke that never moved is drawn as a filled dot.
	if len(path) == 1 {
		cmd.Op = "dot"
		cmd.X, cmd.Y = first.Start.X, first.Start.Y
		cmd.Radius = s.Style.Width / 2
		return cmd, true
	}

	cmd.Op = "path"
	cmd.Path = path
	cmd.StrokeWidth = s.Style.Width
	return cmd, true
}

func cssColor(c stroke.Color) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.Red(), c.Green(), c.Blue(), float64(c.Alpha())/255)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTestResult lists every visible stroke under a point in draw order;
// Top is the frontmost one, or empty.
type HitTestResult struct {
	IDs []string `json:"ids"`
	Top string   `json:"top,omitempty"`
	X   float64  `json:"x"`
	Y   float64  `json:"y"`
}

func newHitTestResult(ids []string, x, y float64) HitTestResult {
	if ids == nil {
		ids = []string{}
	}
	res := HitTestResult{IDs: ids, X: x, Y: y}
	if len(ids) > 0 {
		res.Top = ids[len(ids)-1]
	}
	return res
}
