package board

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/typeid"
)

func TestStore_CreateGetDelete(t *testing.T) {
	s := NewStore(canvas.WithSize(800, 600))

	c, err := s.Create("canvas_a")
	require.NoError(t, err)
	assert.Equal(t, "canvas_a", c.ID())
	assert.Equal(t, 800.0, c.Size().Width)

	_, err = s.Create("canvas_a")
	assert.ErrorIs(t, err, ErrExists)

	got, err := s.Get("canvas_a")
	require.NoError(t, err)
	assert.Same(t, c, got)

	require.NoError(t, s.Delete("canvas_a"))
	_, err = s.Get("canvas_a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("canvas_a"), ErrNotFound)
}

func TestStore_CreateGeneratesID(t *testing.T) {
	s := NewStore()
	c, err := s.Create("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID(), typeid.PrefixCanvas+"_"))
	assert.NoError(t, typeid.Validate(c.ID(), typeid.PrefixCanvas))
}

func TestStore_CreateOptionsOverrideDefaults(t *testing.T) {
	s := NewStore(canvas.WithSize(800, 600))
	c, err := s.Create("big", canvas.WithSize(1920, 1080))
	require.NoError(t, err)
	assert.Equal(t, 1920.0, c.Size().Width)
}

func TestStore_GetOrCreateIsIdempotent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	got := make([]*canvas.Canvas, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Len(t, s.List(), 1)
}

func TestStore_List(t *testing.T) {
	s := NewStore()
	_, err := s.Create("b")
	require.NoError(t, err)
	a, err := s.Create("a")
	require.NoError(t, err)
	_, err = a.CreateStroke(canvas.StrokeParams{})
	require.NoError(t, err)
	a.Save()

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, Summary{ID: "a", Strokes: 1, Depth: 2}, list[0])
	assert.Equal(t, "b", list[1].ID)
}
