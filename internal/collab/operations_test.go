package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

func ptr[T any](v T) *T { return &v }

func apply(t *testing.T, cs *CanvasState, op Operation, user string) Applied {
	t.Helper()
	applied, err := cs.ApplyOperation(&op, user)
	require.NoError(t, err, op.Type)
	return applied
}

func TestCanvasState_StrokeLifecycle(t *testing.T) {
	cs := NewCanvasState(canvas.New())

	op := Operation{ID: "op1", Type: OpStrokeCreate, Width: ptr(4.0)}
	applied, err := cs.ApplyOperation(&op, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, op.StrokeID, "generated ids are written back for the broadcast")
	assert.Equal(t, op.StrokeID, applied.Result.StrokeID)
	assert.Equal(t, int64(1), applied.ServerSeq)
	assert.True(t, applied.Broadcast)
	id := op.StrokeID

	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 0)} {
		apply(t, cs, Operation{Type: OpStrokePoint, StrokeID: id, Point: &p}, "alice")
	}
	assert.True(t, cs.Canvas().Interacting(id))
	apply(t, cs, Operation{Type: OpStrokeEnd, StrokeID: id}, "alice")
	assert.False(t, cs.Canvas().Interacting(id))

	info, err := cs.Canvas().Stroke(id)
	require.NoError(t, err)
	assert.Len(t, info.Points, 3)
	assert.Equal(t, "alice", info.Drawer)

	applied = apply(t, cs, Operation{Type: OpStrokeStyle, StrokeID: id, Color: ptr(stroke.Transparent)}, "alice")
	assert.Equal(t, int64(6), applied.ServerSeq)

	apply(t, cs, Operation{Type: OpStrokePoints, StrokeID: id, Points: []geom.Point{geom.Pt(1, 1)}, Animate: true}, "bob")
	info, _ = cs.Canvas().Stroke(id)
	assert.Equal(t, []geom.Point{geom.Pt(1, 1)}, info.Points)

	apply(t, cs, Operation{Type: OpStrokeHitSlop, StrokeID: id, HitSlop: ptr(geom.UniformHitSlop(3))}, "bob")
	info, _ = cs.Canvas().Stroke(id)
	assert.True(t, info.HitSlopOverridden)

	applied = apply(t, cs, Operation{Type: OpStrokeDelete, StrokeID: id}, "bob")
	assert.Equal(t, []string{id}, applied.Result.Removed)
	assert.Zero(t, cs.Canvas().Len())
}

func TestCanvasState_SaveRestore(t *testing.T) {
	cs := NewCanvasState(canvas.New())
	create := Operation{Type: OpStrokeCreate, StrokeID: "s1", Width: ptr(2.0)}
	apply(t, cs, create, "alice")

	applied := apply(t, cs, Operation{Type: OpCanvasSave}, "alice")
	require.NotNil(t, applied.Result.Level)
	assert.Equal(t, 1, *applied.Result.Level)

	apply(t, cs, Operation{Type: OpStrokeStyle, StrokeID: "s1", Width: ptr(9.0)}, "alice")
	applied = apply(t, cs, Operation{Type: OpCanvasRestore}, "alice")
	assert.Equal(t, []string{"s1"}, applied.Result.Changed)
	assert.Equal(t, -1, *applied.Result.Level)

	seq := applied.ServerSeq
	_, err := cs.ApplyOperation(&Operation{Type: OpCanvasRestore, Level: ptr(7)}, "alice")
	assert.ErrorIs(t, err, canvas.ErrInvalidSaveCount)
	assert.Equal(t, seq, cs.Sync().ServerSeq, "rejected operations do not advance the sequence")
}

func TestCanvasState_CanvasWideOps(t *testing.T) {
	cs := NewCanvasState(canvas.New())

	apply(t, cs, Operation{Type: OpCanvasStyle, Color: ptr(stroke.Color(0xFF00FF00)), Width: ptr(5.0)}, "alice")
	assert.Equal(t, canvas.GraphicsState{StrokeColor: 0xFF00FF00, StrokeWidth: 5}, cs.Canvas().DefaultStyle())

	apply(t, cs, Operation{Type: OpCanvasHitSlop, HitSlop: ptr(geom.UniformHitSlop(4))}, "alice")
	assert.Equal(t, geom.UniformHitSlop(4), cs.Canvas().HitSlop())

	apply(t, cs, Operation{Type: OpStrokeCreate, StrokeID: "a"}, "alice")
	apply(t, cs, Operation{Type: OpStrokeCreate, StrokeID: "b"}, "bob")
	apply(t, cs, Operation{Type: OpStrokeCreate, StrokeID: "c"}, "alice")

	undo := Operation{Type: OpCanvasUndo}
	applied, err := cs.ApplyOperation(&undo, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, applied.Result.Removed)
	assert.Equal(t, []string{"b"}, undo.StrokeIDs, "peers replay undo as a delete")

	_, err = cs.ApplyOperation(&Operation{Type: OpCanvasUndo}, "bob")
	assert.ErrorIs(t, err, canvas.ErrNothingToUndo)

	applied = apply(t, cs, Operation{Type: OpCanvasClear}, "alice")
	assert.Equal(t, []string{"a", "c"}, applied.Result.Removed)
}

func TestCanvasState_HitTestIsAQuery(t *testing.T) {
	cs := NewCanvasState(canvas.New(canvas.WithHitSlop(geom.UniformHitSlop(2))))
	apply(t, cs, Operation{Type: OpStrokeCreate, StrokeID: "s1", Width: ptr(4.0)}, "alice")
	apply(t, cs, Operation{Type: OpStrokePoints, StrokeID: "s1",
		Points: []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 0)}}, "alice")

	applied := apply(t, cs, Operation{Type: OpHitTest, Point: ptr(geom.Pt(10, 0.5))}, "bob")
	assert.False(t, applied.Broadcast)
	assert.Equal(t, int64(2), applied.ServerSeq)
	assert.Equal(t, []string{"s1"}, applied.Result.Hits)

	applied = apply(t, cs, Operation{Type: OpHitTest, StrokeID: "s1", Point: ptr(geom.Pt(10, 50))}, "bob")
	require.NotNil(t, applied.Result.Hit)
	assert.False(t, *applied.Result.Hit)
}

func TestCanvasState_Rejects(t *testing.T) {
	cs := NewCanvasState(canvas.New())
	apply(t, cs, Operation{Type: OpStrokeCreate, StrokeID: "s1"}, "alice")

	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"duplicate create", Operation{Type: OpStrokeCreate, StrokeID: "s1"}, canvas.ErrDuplicateID},
		{"point without point", Operation{Type: OpStrokePoint, StrokeID: "s1"}, ErrInvalidOperation},
		{"point on unknown stroke", Operation{Type: OpStrokePoint, StrokeID: "x", Point: ptr(geom.Pt(0, 0))}, canvas.ErrUnknownID},
		{"hit slop missing", Operation{Type: OpStrokeHitSlop, StrokeID: "s1"}, ErrInvalidOperation},
		{"delete nothing", Operation{Type: OpStrokeDelete}, ErrInvalidOperation},
		{"canvas hit slop missing", Operation{Type: OpCanvasHitSlop}, ErrInvalidOperation},
		{"hit test without point", Operation{Type: OpHitTest}, ErrInvalidOperation},
		{"unknown type", Operation{Type: "object.transform"}, ErrUnknownOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.ApplyOperation(&tt.op, "alice")
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(1), cs.Sync().ServerSeq)
}

func TestNackReason(t *testing.T) {
	cs := NewCanvasState(canvas.New())
	_, err := cs.ApplyOperation(&Operation{Type: OpStrokeEnd, StrokeID: "nope"}, "alice")
	assert.Equal(t, "unknown_id", nackReason(err))
	_, err = cs.ApplyOperation(&Operation{Type: OpCanvasRestore, Level: ptr(3)}, "alice")
	assert.Equal(t, "invalid_save_count", nackReason(err))
}
