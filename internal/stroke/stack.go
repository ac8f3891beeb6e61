package stroke

import (
	"errors"
	"fmt"
)

var ErrInvalidSaveCount = errors.New("invalid save count")

// Style is the visible style of a stroke.
type Style struct {
	Color Color
	Width float64
}

// IsEraser reports whether the style erases.
func (s Style) IsEraser() bool {
	return s.Color.IsEraser()
}

// Stack is a depth-indexed save/restore stack for a value.
//
// The live value is edited freely. Save records it as a new level; level 0 is
// recorded at construction, so the depth is never below 1. The canvas and each
// of its strokes keep one Stack apiece, saved and restored in lock step.
type Stack[T comparable] struct {
	live  T
	saved []T
}

// NewStack returns a stack whose live value is v and whose first depth levels
// all record v. depth values below 1 are treated as 1.
func NewStack[T comparable](v T, depth int) *Stack[T] {
	if depth < 1 {
		depth = 1
	}
	saved := make([]T, depth)
	for i := range saved {
		saved[i] = v
	}
	return &Stack[T]{live: v, saved: saved}
}

// Current returns the live value.
func (s *Stack[T]) Current() T {
	return s.live
}

// Set replaces the live value and reports whether it changed.
func (s *Stack[T]) Set(v T) bool {
	changed := s.live != v
	s.live = v
	return changed
}

// Depth returns the number of recorded levels.
func (s *Stack[T]) Depth() int {
	return len(s.saved)
}

// Save records the live value as a new level and returns its index.
func (s *Stack[T]) Save() int {
	s.saved = append(s.saved, s.live)
	return len(s.saved) - 1
}

// Restore reverts the live value and discards levels, reporting whether the
// live value changed. See ResolveRestore for the meaning of level.
func (s *Stack[T]) Restore(level int) (bool, error) {
	revert, keep, err := ResolveRestore(level, len(s.saved))
	if err != nil {
		return false, err
	}
	changed := s.Set(s.saved[revert])
	s.saved = s.saved[:keep]
	return changed, nil
}

// ResolveRestore maps a restore request on a stack of the given depth to the
// level whose value becomes live and the number of levels kept.
//
// level -1 pops exactly one level: the most recent level becomes live and is
// discarded, never dropping below the base level. Any other level must be in
// [0, depth): it becomes live and the stack is truncated to level+1 entries,
// so the same level can be restored again.
func ResolveRestore(level, depth int) (revert, keep int, err error) {
	if level == -1 {
		revert = depth - 1
		keep = max(depth-1, 1)
		return revert, keep, nil
	}
	if level < 0 || level >= depth {
		return 0, 0, fmt.Errorf("%w: %d (depth %d)", ErrInvalidSaveCount, level, depth)
	}
	return level, level + 1, nil
}
