// Package canvas owns an ordered collection of strokes and everything shared
// between them: the graphics-state stack that supplies defaults for new
// strokes, the canvas-wide hit slop, and the set of strokes that are still
// receiving points.
//
// A Canvas is safe for concurrent use. Every mutation runs as one
// write-locked transaction; queries take the read lock and never mutate.
package canvas

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/hittest"
	"github.com/inamate/inkcanvas/internal/stroke"
	"github.com/inamate/inkcanvas/internal/typeid"
)

// GraphicsState holds the defaults applied to newly created strokes.
type GraphicsState struct {
	StrokeColor stroke.Color `json:"strokeColor"`
	StrokeWidth float64      `json:"strokeWidth"`
}

// StrokeParams describes a stroke to create. Nil fields inherit from the
// current graphics state or canvas hit slop; an empty ID is generated.
type StrokeParams struct {
	ID      string
	Color   *stroke.Color
	Width   *float64
	HitSlop *geom.HitSlop
	Drawer  string
}

type Canvas struct {
	mu sync.RWMutex

	id      string
	size    document.Size
	density float64
	logger  *slog.Logger

	strokes []*stroke.Stroke
	byID    map[string]*stroke.Stroke

	state       *stroke.Stack[GraphicsState]
	hitSlop     geom.HitSlop
	interacting map[string]struct{}
}

// New returns an empty canvas with a single base graphics state.
func New(opts ...Option) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Canvas{
		id:          o.id,
		size:        o.size,
		density:     o.density,
		logger:      o.logger,
		byID:        make(map[string]*stroke.Stroke),
		state:       stroke.NewStack(o.style, 1),
		hitSlop:     o.hitSlop,
		interacting: make(map[string]struct{}),
	}
}

func (c *Canvas) ID() string { return c.id }

func (c *Canvas) Size() document.Size { return c.size }

func (c *Canvas) Density() float64 { return c.density }

func (c *Canvas) lookup(id string) (*stroke.Stroke, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	return s, nil
}

func (c *Canvas) indexOf(id string) int {
	return slices.IndexFunc(c.strokes, func(s *stroke.Stroke) bool { return s.ID() == id })
}

func (c *Canvas) targets() []hittest.Target {
	targets := make([]hittest.Target, len(c.strokes))
	for i, s := range c.strokes {
		targets[i] = s
	}
	return targets
}

func (c *Canvas) createLocked(p StrokeParams) (*stroke.Stroke, error) {
	id := p.ID
	if id == "" {
		id = typeid.NewStrokeID()
	}
	if _, exists := c.byID[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	gs := c.state.Current()
	style := stroke.Style{Color: gs.StrokeColor, Width: gs.StrokeWidth}
	if p.Color != nil {
		style.Color = *p.Color
	}
	if p.Width != nil {
		style.Width = *p.Width
	}

	s := stroke.New(id, style, c.hitSlop, c.state.Depth())
	if p.HitSlop != nil {
		s.SetHitSlop(*p.HitSlop, true)
	}
	s.SetDrawer(p.Drawer)

	c.strokes = append(c.strokes, s)
	c.byID[id] = s
	return s, nil
}

func (c *Canvas) removeLocked(ids map[string]struct{}) []string {
	var removed []string
	kept := c.strokes[:0]
	for _, s := range c.strokes {
		if _, ok := ids[s.ID()]; ok {
			removed = append(removed, s.ID())
			delete(c.byID, s.ID())
			delete(c.interacting, s.ID())
			continue
		}
		kept = append(kept, s)
	}
	clear(c.strokes[len(kept):])
	c.strokes = kept
	return removed
}

// CreateStroke adds an empty stroke on top of the canvas and returns its id.
func (c *Canvas) CreateStroke(p StrokeParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.createLocked(p)
	if err != nil {
		return "", err
	}
	return s.ID(), nil
}

// AppendPoint adds p to the stroke and marks it as mid-interaction.
func (c *Canvas) AppendPoint(id string, p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.interacting[id] = struct{}{}
	s.AppendPoint(p)
	return nil
}

// BeginInteraction marks the stroke as receiving live input.
func (c *Canvas) BeginInteraction(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.lookup(id); err != nil {
		return err
	}
	c.interacting[id] = struct{}{}
	return nil
}

// EndInteraction finalizes the stroke so Clear may remove it.
func (c *Canvas) EndInteraction(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.interacting[id]; ok {
		delete(c.interacting, id)
		return nil
	}
	_, err := c.lookup(id)
	return err
}

// Interacting reports whether the stroke is mid-interaction.
func (c *Canvas) Interacting(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.interacting[id]
	return ok
}

// InteractingBy returns the strokes drawer still has mid-interaction, in
// draw order.
func (c *Canvas) InteractingBy(drawer string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	for _, s := range c.strokes {
		if _, busy := c.interacting[s.ID()]; busy && s.Drawer() == drawer {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// SetPoints replaces every point of the stroke.
func (c *Canvas) SetPoints(id string, points []geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	s.SetPoints(points)
	return nil
}

// SetStrokeStyle updates whichever of color and width is non-nil.
func (c *Canvas) SetStrokeStyle(id string, color *stroke.Color, width *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	s.SetStyle(color, width)
	return nil
}

// SetDefaultStyle edits the current graphics state. Existing strokes are
// unaffected.
func (c *Canvas) SetDefaultStyle(color *stroke.Color, width *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gs := c.state.Current()
	if color != nil {
		gs.StrokeColor = *color
	}
	if width != nil {
		gs.StrokeWidth = *width
	}
	c.state.Set(gs)
}

func (c *Canvas) DefaultStyle() GraphicsState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Current()
}

// SetHitSlop sets the canvas-wide hit slop and pushes it to every stroke.
// Strokes with an explicit hit slop keep theirs unless overrideAll is set,
// in which case every stroke takes h and stops inheriting.
func (c *Canvas) SetHitSlop(h geom.HitSlop, overrideAll bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hitSlop = h
	for _, s := range c.strokes {
		s.SetHitSlop(h, overrideAll)
	}
}

func (c *Canvas) HitSlop() geom.HitSlop {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitSlop
}

// SetStrokeHitSlop gives one stroke an explicit hit slop.
func (c *Canvas) SetStrokeHitSlop(id string, h geom.HitSlop) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	s.SetHitSlop(h, true)
	return nil
}

// Save pushes a copy of the graphics state, snapshots every stroke's style,
// and returns the level to pass to Restore. A fresh canvas returns 1.
func (c *Canvas) Save() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	level := c.state.Save()
	for _, s := range c.strokes {
		s.Save()
	}
	c.logger.Debug("canvas saved", "canvas", c.id, "level", level)
	return level
}

// Restore reverts the graphics state and every stroke to level (-1 pops one
// level) and returns the ids of strokes whose visible style changed, in draw
// order. An out-of-range level fails with ErrInvalidSaveCount and changes
// nothing.
func (c *Canvas) Restore(level int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, _, err := stroke.ResolveRestore(level, c.state.Depth()); err != nil {
		return nil, err
	}
	if _, err := c.state.Restore(level); err != nil {
		return nil, err
	}

	var changed []string
	for _, s := range c.strokes {
		ok, err := s.Restore(level)
		if err != nil {
			// Strokes are created at the canvas depth and saved with it.
			c.logger.Warn("stroke save depth out of step", "canvas", c.id, "stroke", s.ID(), "err", err)
			continue
		}
		if ok {
			changed = append(changed, s.ID())
		}
	}
	c.logger.Debug("canvas restored", "canvas", c.id, "level", level, "depth", c.state.Depth(), "changed", len(changed))
	return changed, nil
}

// Depth returns the number of graphics-state levels; never below 1.
func (c *Canvas) Depth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Depth()
}

// Clear removes every stroke that is not mid-interaction and returns the
// removed ids in draw order.
func (c *Canvas) Clear() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make(map[string]struct{}, len(c.strokes))
	for _, s := range c.strokes {
		if _, busy := c.interacting[s.ID()]; !busy {
			ids[s.ID()] = struct{}{}
		}
	}
	removed := c.removeLocked(ids)
	c.logger.Debug("canvas cleared", "canvas", c.id, "removed", len(removed), "kept", len(c.strokes))
	return removed
}

// RemoveStrokes deletes the given strokes. If any id is unknown nothing is
// removed.
func (c *Canvas) RemoveStrokes(ids ...string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, err := c.lookup(id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return c.removeLocked(set), nil
}

// Undo removes the topmost finished stroke attributed to drawer.
func (c *Canvas) Undo(drawer string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.strokes) - 1; i >= 0; i-- {
		s := c.strokes[i]
		if s.Drawer() != drawer {
			continue
		}
		if _, busy := c.interacting[s.ID()]; busy {
			continue
		}
		c.removeLocked(map[string]struct{}{s.ID(): {}})
		return s.ID(), nil
	}
	return "", fmt.Errorf("%w for %q", ErrNothingToUndo, drawer)
}

// HitTest returns the ids of visible strokes under p in draw order; the
// topmost hit is last.
func (c *Canvas) HitTest(p geom.Point) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return hittest.PointOnCanvas(p, c.targets())
}

// HitTestStroke reports whether p hits the stroke and no erase stroke at or
// above it masks p. Erase strokes never report a hit.
func (c *Canvas) HitTestStroke(p geom.Point, id string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	return hittest.Visible(p, c.targets(), i), nil
}

// Export projects every stroke into interchange form, in draw order.
func (c *Canvas) Export(includePoints bool) []document.PathData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exportLocked(includePoints)
}

func (c *Canvas) exportLocked(includePoints bool) []document.PathData {
	out := make([]document.PathData, len(c.strokes))
	for i, s := range c.strokes {
		out[i] = s.ToInterchange(includePoints, c.density)
	}
	return out
}

// Document exports the whole canvas, including its size and save depth.
func (c *Canvas) Document(includePoints bool) document.Canvas {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return document.Canvas{
		ID:    c.id,
		Size:  c.size,
		Depth: c.state.Depth(),
		Paths: c.exportLocked(includePoints),
	}
}

// Import adds interchange paths on top of the canvas. Coordinates are scaled
// from each path's surface width to this canvas's width, then width and
// points are converted to pixels. Ids must be new and unique within paths;
// on any conflict nothing is imported.
func (c *Canvas) Import(paths []document.Path) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		id := p.Path.ID
		if id == "" {
			continue
		}
		if _, ok := c.byID[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s repeated in import", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		color := stroke.Color(p.Path.Color)
		width := p.Path.Width * c.density
		s, err := c.createLocked(StrokeParams{
			ID:     p.Path.ID,
			Color:  &color,
			Width:  &width,
			Drawer: p.Drawer,
		})
		if err != nil {
			return nil, err
		}

		factor := document.Scale(p.Size, c.size.Width) * c.density
		points := make([]geom.Point, len(p.Path.Points))
		for i, pt := range p.Path.Points {
			points[i] = pt.Mul(factor)
		}
		s.SetPoints(points)
		ids = append(ids, s.ID())
	}
	c.logger.Debug("paths imported", "canvas", c.id, "count", len(ids))
	return ids, nil
}

// PreCommitPoints stages points for the stroke. Without animate they are
// committed at once; with it they are applied one per CommitNextPoint call.
func (c *Canvas) PreCommitPoints(id string, points []geom.Point, animate bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	s.PreCommit(points)
	if !animate {
		return s.CommitAll()
	}
	return nil
}

// CommitNextPoint applies the next staged point and returns how many remain.
func (c *Canvas) CommitNextPoint(id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return 0, err
	}
	remaining, err := s.CommitNext()
	if err != nil {
		return 0, fmt.Errorf("commit %s: %w", id, err)
	}
	return remaining, nil
}

// CommitAllPoints applies every staged point.
func (c *Canvas) CommitAllPoints(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	if err := s.CommitAll(); err != nil {
		return fmt.Errorf("commit %s: %w", id, err)
	}
	return nil
}

// StrokeInfo is a point-in-time copy of one stroke.
type StrokeInfo struct {
	ID                string
	Drawer            string
	Style             stroke.Style
	HitSlop           geom.HitSlop
	HitSlopOverridden bool
	Points            []geom.Point
	Interacting       bool
	CommitState       stroke.CommitState
}

// Stroke returns a copy of the stroke's state.
func (c *Canvas) Stroke(id string) (StrokeInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, err := c.lookup(id)
	if err != nil {
		return StrokeInfo{}, err
	}
	_, busy := c.interacting[id]
	return StrokeInfo{
		ID:                s.ID(),
		Drawer:            s.Drawer(),
		Style:             s.Style(),
		HitSlop:           s.EffectiveHitSlop(),
		HitSlopOverridden: s.HitSlopOverridden(),
		Points:            slices.Clone(s.Points()),
		Interacting:       busy,
		CommitState:       s.CommitState(),
	}, nil
}

// IDs returns the stroke ids in draw order.
func (c *Canvas) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, len(c.strokes))
	for i, s := range c.strokes {
		ids[i] = s.ID()
	}
	return ids
}

func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.strokes)
}

// Snapshot copies render state for every stroke (or only those changed since
// the previous snapshot) in draw order, and marks them clean.
func (c *Canvas) Snapshot(onlyDirty bool) []stroke.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []stroke.Snapshot
	for _, s := range c.strokes {
		if onlyDirty && !s.Dirty() {
			continue
		}
		out = append(out, s.Snapshot())
		s.MarkClean()
	}
	return out
}
