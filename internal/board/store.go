// Package board keeps the canvases served by this process. Canvases live in
// memory for the lifetime of the process.
package board

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/metrics"
	"github.com/inamate/inkcanvas/internal/typeid"
)

var (
	ErrNotFound = errors.New("canvas not found")
	ErrExists   = errors.New("canvas already exists")
)

// Summary describes a canvas without its strokes.
type Summary struct {
	ID      string  `json:"id"`
	Strokes int     `json:"strokes"`
	Depth   int     `json:"depth"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type Store struct {
	mu       sync.RWMutex
	canvases map[string]*canvas.Canvas
	defaults []canvas.Option
}

// NewStore returns an empty store. defaults are applied to every canvas it
// creates.
func NewStore(defaults ...canvas.Option) *Store {
	return &Store{
		canvases: make(map[string]*canvas.Canvas),
		defaults: defaults,
	}
}

func (s *Store) newCanvas(id string, opts []canvas.Option) *canvas.Canvas {
	all := append(slices.Clone(s.defaults), canvas.WithID(id))
	return canvas.New(append(all, opts...)...)
}

// Create adds a canvas. An empty id is generated.
func (s *Store) Create(id string, opts ...canvas.Option) (*canvas.Canvas, error) {
	if id == "" {
		id = typeid.NewCanvasID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.canvases[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}
	c := s.newCanvas(id, opts)
	s.canvases[id] = c
	metrics.Canvases.Set(float64(len(s.canvases)))
	slog.Info("canvas created", "canvas", id)
	return c, nil
}

func (s *Store) Get(id string) (*canvas.Canvas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.canvases[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// GetOrCreate returns the canvas, creating it with the store defaults if
// needed.
func (s *Store) GetOrCreate(id string) *canvas.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.canvases[id]; ok {
		return c
	}
	c := s.newCanvas(id, nil)
	s.canvases[id] = c
	metrics.Canvases.Set(float64(len(s.canvases)))
	return c
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.canvases[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.canvases, id)
	metrics.Canvases.Set(float64(len(s.canvases)))
	slog.Info("canvas deleted", "canvas", id)
	return nil
}

// List returns every canvas ordered by id.
func (s *Store) List() []Summary {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.canvases))
	for id, c := range s.canvases {
		size := c.Size()
		out = append(out, Summary{
			ID:      id,
			Strokes: c.Len(),
			Depth:   c.Depth(),
			Width:   size.Width,
			Height:  size.Height,
		})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.ID, b.ID) })
	return out
}
