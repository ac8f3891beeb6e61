package collab

import (
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/inkcanvas/internal/canvas"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
)

// OpResult is what an operation produced, echoed in op.ack and op.broadcast.
type OpResult struct {
	StrokeID string   `json:"strokeId,omitempty"`
	Level    *int     `json:"level,omitempty"`
	Changed  []string `json:"changed,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Hits     []string `json:"hits,omitempty"`
	Hit      *bool    `json:"hit,omitempty"`
}

// Applied describes the outcome of a successful operation.
type Applied struct {
	ServerSeq int64
	Result    OpResult
	// Queries are acknowledged to the sender only.
	Broadcast bool
}

// CanvasState holds the authoritative canvas for a room and orders the
// operations applied to it.
type CanvasState struct {
	mu        sync.Mutex
	canvas    *canvas.Canvas
	serverSeq int64
}

// NewCanvasState wraps a canvas.
func NewCanvasState(c *canvas.Canvas) *CanvasState {
	return &CanvasState{canvas: c}
}

// Canvas returns the underlying canvas (caller should not mutate outside
// ApplyOperation).
func (cs *CanvasState) Canvas() *canvas.Canvas {
	return cs.canvas
}

// Sync returns the full canvas together with the sequence it reflects.
func (cs *CanvasState) Sync() DocSyncPayload {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return DocSyncPayload{Canvas: cs.canvas.Document(true), ServerSeq: cs.serverSeq}
}

// ApplyOperation applies op on behalf of userID. Mutations advance the server
// sequence; op is updated in place with any server-assigned ids so the
// broadcast copy replays identically on peers.
func (cs *CanvasState) ApplyOperation(op *Operation, userID string) (Applied, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if op.Type == OpHitTest {
		res, err := cs.hitTest(op)
		if err != nil {
			return Applied{}, err
		}
		return Applied{ServerSeq: cs.serverSeq, Result: res}, nil
	}

	res, err := cs.applyLocked(op, userID)
	if err != nil {
		return Applied{}, err
	}
	cs.serverSeq++
	return Applied{ServerSeq: cs.serverSeq, Result: res, Broadcast: true}, nil
}

// applyLocked applies the operation without locking (caller must hold lock)
func (cs *CanvasState) applyLocked(op *Operation, userID string) (OpResult, error) {
	c := cs.canvas
	switch op.Type {
	case OpStrokeCreate:
		id, err := c.CreateStroke(canvas.StrokeParams{
			ID:      op.StrokeID,
			Color:   op.Color,
			Width:   op.Width,
			HitSlop: op.HitSlop,
			Drawer:  userID,
		})
		if err != nil {
			return OpResult{}, err
		}
		op.StrokeID = id
		return OpResult{StrokeID: id}, nil

	case OpStrokePoint:
		if op.Point == nil {
			return OpResult{}, fmt.Errorf("%w: %s needs a point", ErrInvalidOperation, op.Type)
		}
		return OpResult{StrokeID: op.StrokeID}, c.AppendPoint(op.StrokeID, *op.Point)

	case OpStrokeEnd:
		return OpResult{StrokeID: op.StrokeID}, c.EndInteraction(op.StrokeID)

	case OpStrokePoints:
		// Animation is up to each client; the server state jumps to the end.
		return OpResult{StrokeID: op.StrokeID}, c.SetPoints(op.StrokeID, op.Points)

	case OpStrokeStyle:
		return OpResult{StrokeID: op.StrokeID}, c.SetStrokeStyle(op.StrokeID, op.Color, op.Width)

	case OpStrokeHitSlop:
		if op.HitSlop == nil {
			return OpResult{}, fmt.Errorf("%w: %s needs a hit slop", ErrInvalidOperation, op.Type)
		}
		return OpResult{StrokeID: op.StrokeID}, c.SetStrokeHitSlop(op.StrokeID, *op.HitSlop)

	case OpStrokeDelete:
		ids := op.StrokeIDs
		if len(ids) == 0 && op.StrokeID != "" {
			ids = []string{op.StrokeID}
		}
		if len(ids) == 0 {
			return OpResult{}, fmt.Errorf("%w: %s needs stroke ids", ErrInvalidOperation, op.Type)
		}
		removed, err := c.RemoveStrokes(ids...)
		if err != nil {
			return OpResult{}, err
		}
		return OpResult{Removed: removed}, nil

	case OpCanvasStyle:
		c.SetDefaultStyle(op.Color, op.Width)
		return OpResult{}, nil

	case OpCanvasHitSlop:
		if op.HitSlop == nil {
			return OpResult{}, fmt.Errorf("%w: %s needs a hit slop", ErrInvalidOperation, op.Type)
		}
		c.SetHitSlop(*op.HitSlop, op.OverrideAll)
		return OpResult{}, nil

	case OpCanvasSave:
		level := c.Save()
		return OpResult{Level: &level}, nil

	case OpCanvasRestore:
		level := -1
		if op.Level != nil {
			level = *op.Level
		}
		changed, err := c.Restore(level)
		if err != nil {
			return OpResult{}, err
		}
		return OpResult{Level: &level, Changed: changed}, nil

	case OpCanvasClear:
		return OpResult{Removed: c.Clear()}, nil

	case OpCanvasUndo:
		id, err := c.Undo(userID)
		if err != nil {
			return OpResult{}, err
		}
		// Peers replay an undo as a plain delete of the same stroke.
		op.StrokeIDs = []string{id}
		return OpResult{Removed: op.StrokeIDs}, nil

	default:
		return OpResult{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func (cs *CanvasState) hitTest(op *Operation) (OpResult, error) {
	if op.Point == nil {
		return OpResult{}, fmt.Errorf("%w: %s needs a point", ErrInvalidOperation, op.Type)
	}
	if op.StrokeID != "" {
		hit, err := cs.canvas.HitTestStroke(*op.Point, op.StrokeID)
		if err != nil {
			return OpResult{}, err
		}
		return OpResult{StrokeID: op.StrokeID, Hit: &hit}, nil
	}
	hits := cs.canvas.HitTest(*op.Point)
	return OpResult{Hits: hits}, nil
}
