package engine

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

// Engine wraps one canvas for string/JSON host bridges (wasm, native views).
// It processes commands from the frontend and returns query results.
type Engine struct {
	canvas *canvas.Canvas

	// User new strokes are attributed to; Undo removes theirs.
	drawer string

	// Strokes replaying pre-committed points, advanced by Tick.
	animating []string
}

// StyleParams is the JSON form of an optional colour/width pair.
type StyleParams struct {
	Color *stroke.Color `json:"color,omitempty"`
	Width *float64      `json:"width,omitempty"`
}

// StrokeParams is the JSON form of a new stroke.
type StrokeParams struct {
	ID      string        `json:"id,omitempty"`
	Color   *stroke.Color `json:"color,omitempty"`
	Width   *float64      `json:"width,omitempty"`
	HitSlop *geom.HitSlop `json:"hitSlop,omitempty"`
}

// NewEngine creates a new engine over an empty canvas.
func NewEngine(drawer string, opts ...canvas.Option) *Engine {
	return &Engine{
		canvas: canvas.New(opts...),
		drawer: drawer,
	}
}

// Canvas exposes the underlying canvas.
func (e *Engine) Canvas() *canvas.Canvas {
	return e.canvas
}

// --- Commands (frontend → backend) ---

// CreateStroke creates a stroke from JSON params ("" for defaults) and
// returns its id.
func (e *Engine) CreateStroke(jsonParams string) (string, error) {
	var p StrokeParams
	if jsonParams != "" {
		if err := json.Unmarshal([]byte(jsonParams), &p); err != nil {
			return "", fmt.Errorf("decode stroke params: %w", err)
		}
	}
	return e.canvas.CreateStroke(canvas.StrokeParams{
		ID:      p.ID,
		Color:   p.Color,
		Width:   p.Width,
		HitSlop: p.HitSlop,
		Drawer:  e.drawer,
	})
}

// AppendPoint adds a touch point to a stroke in progress.
func (e *Engine) AppendPoint(id string, x, y float64) error {
	return e.canvas.AppendPoint(id, geom.Pt(x, y))
}

// EndStroke finalizes a stroke after the last touch point.
func (e *Engine) EndStroke(id string) error {
	return e.canvas.EndInteraction(id)
}

// SetPoints replaces a stroke's points from a JSON array of {x, y}.
func (e *Engine) SetPoints(id, jsonPoints string) error {
	var pts []geom.Point
	if err := json.Unmarshal([]byte(jsonPoints), &pts); err != nil {
		return fmt.Errorf("decode points: %w", err)
	}
	return e.canvas.SetPoints(id, pts)
}

// SetStrokeStyle updates one stroke's colour and/or width.
func (e *Engine) SetStrokeStyle(id, jsonStyle string) error {
	var p StyleParams
	if err := json.Unmarshal([]byte(jsonStyle), &p); err != nil {
		return fmt.Errorf("decode style: %w", err)
	}
	return e.canvas.SetStrokeStyle(id, p.Color, p.Width)
}

// SetDefaultStyle updates the style future strokes start with.
func (e *Engine) SetDefaultStyle(jsonStyle string) error {
	var p StyleParams
	if err := json.Unmarshal([]byte(jsonStyle), &p); err != nil {
		return fmt.Errorf("decode style: %w", err)
	}
	e.canvas.SetDefaultStyle(p.Color, p.Width)
	return nil
}

// SetHitSlop sets the canvas-wide hit slop.
func (e *Engine) SetHitSlop(jsonHitSlop string, overrideAll bool) error {
	var h geom.HitSlop
	if err := json.Unmarshal([]byte(jsonHitSlop), &h); err != nil {
		return fmt.Errorf("decode hit slop: %w", err)
	}
	e.canvas.SetHitSlop(h, overrideAll)
	return nil
}

func (e *Engine) Save() int {
	return e.canvas.Save()
}

// Restore reverts to a save level and returns the changed stroke ids as JSON.
func (e *Engine) Restore(level int) (string, error) {
	changed, err := e.canvas.Restore(level)
	if err != nil {
		return "[]", err
	}
	return idsToJSON(changed), nil
}

// Clear removes every finished stroke and returns the removed ids as JSON.
func (e *Engine) Clear() string {
	removed := e.canvas.Clear()
	e.forget(removed)
	return idsToJSON(removed)
}

// DeleteStrokes removes the strokes named in a JSON array of ids.
func (e *Engine) DeleteStrokes(jsonIDs string) (string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(jsonIDs), &ids); err != nil {
		return "[]", fmt.Errorf("decode ids: %w", err)
	}
	removed, err := e.canvas.RemoveStrokes(ids...)
	if err != nil {
		return "[]", err
	}
	e.forget(removed)
	return idsToJSON(removed), nil
}

// Undo removes this drawer's most recent stroke and returns its id.
func (e *Engine) Undo() (string, error) {
	id, err := e.canvas.Undo(e.drawer)
	if err != nil {
		return "", err
	}
	e.forget([]string{id})
	return id, nil
}

// AddPaths imports a JSON array of paths as produced by GetPaths on another
// surface and returns the new ids as JSON.
func (e *Engine) AddPaths(jsonPaths string) (string, error) {
	var paths []document.Path
	if err := json.Unmarshal([]byte(jsonPaths), &paths); err != nil {
		return "[]", fmt.Errorf("decode paths: %w", err)
	}
	ids, err := e.canvas.Import(paths)
	if err != nil {
		return "[]", err
	}
	return idsToJSON(ids), nil
}

// LoadSample imports the built-in sample drawing.
func (e *Engine) LoadSample() error {
	_, err := e.canvas.Import(document.NewSamplePaths(e.drawer))
	return err
}

// PreCommitPoints stages points for a stroke. With animate they are replayed
// one per Tick; otherwise they are applied at once.
func (e *Engine) PreCommitPoints(id, jsonPoints string, animate bool) error {
	var pts []geom.Point
	if err := json.Unmarshal([]byte(jsonPoints), &pts); err != nil {
		return fmt.Errorf("decode points: %w", err)
	}
	if err := e.canvas.PreCommitPoints(id, pts, animate); err != nil {
		return err
	}
	if animate && !slices.Contains(e.animating, id) {
		e.animating = append(e.animating, id)
	}
	return nil
}

// CommitAll finishes any replay of pre-committed points for a stroke.
func (e *Engine) CommitAll(id string) error {
	if err := e.canvas.CommitAllPoints(id); err != nil {
		return err
	}
	e.forget([]string{id})
	return nil
}

// Tick advances every replaying stroke by one point and returns draw
// commands for whatever changed. This is called once per animation frame
// from the frontend.
func (e *Engine) Tick() string {
	kept := e.animating[:0]
	for _, id := range e.animating {
		remaining, err := e.canvas.CommitNextPoint(id)
		if err == nil && remaining > 0 {
			kept = append(kept, id)
		}
	}
	e.animating = kept
	return e.RenderDirty()
}

// Animating reports how many strokes are still replaying.
func (e *Engine) Animating() int {
	return len(e.animating)
}

func (e *Engine) forget(ids []string) {
	e.animating = slices.DeleteFunc(e.animating, func(id string) bool {
		return slices.Contains(ids, id)
	})
}

// --- Queries (frontend ← backend) ---

// Render returns draw commands for every stroke as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(CompileDrawCommands(e.canvas.Snapshot(false)))
	return result
}

// RenderDirty returns draw commands only for strokes changed since the last
// render.
func (e *Engine) RenderDirty() string {
	result, _ := DrawCommandsToJSON(CompileDrawCommands(e.canvas.Snapshot(true)))
	return result
}

// HitTest returns every visible stroke under (x, y) as JSON.
func (e *Engine) HitTest(x, y float64) string {
	data, _ := json.Marshal(newHitTestResult(e.canvas.HitTest(geom.Pt(x, y)), x, y))
	return string(data)
}

// HitTestStroke reports whether (x, y) lands on the visible part of a stroke.
func (e *Engine) HitTestStroke(x, y float64, id string) (bool, error) {
	return e.canvas.HitTestStroke(geom.Pt(x, y), id)
}

// GetPaths returns the interchange projection of every stroke as JSON.
func (e *Engine) GetPaths(includePoints bool) string {
	paths := make([]document.Path, 0, e.canvas.Len())
	size := e.canvas.Size()
	for _, p := range e.canvas.Export(includePoints) {
		paths = append(paths, document.Path{Size: size, Path: p})
	}
	data, _ := json.Marshal(paths)
	return string(data)
}

// GetDocument returns the full canvas as JSON (for debugging/sync).
func (e *Engine) GetDocument() string {
	data, _ := json.Marshal(e.canvas.Document(true))
	return string(data)
}

// GetDepth returns the save depth.
func (e *Engine) GetDepth() int {
	return e.canvas.Depth()
}

// GetDefaultStyle returns the current graphics state as JSON.
func (e *Engine) GetDefaultStyle() string {
	data, _ := json.Marshal(e.canvas.DefaultStyle())
	return string(data)
}

func idsToJSON(ids []string) string {
	if ids == nil {
		return "[]"
	}
	data, _ := json.Marshal(ids)
	return string(data)
}
