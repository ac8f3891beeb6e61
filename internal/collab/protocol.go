package collab

import (
	"encoding/json"

	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/stroke"
)

type Message struct {
	Type     string          `json:"type"`
	CanvasID string          `json:"canvasId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Drawing     string     `json:"drawing,omitempty"` // stroke id in progress
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DocSyncPayload is the full canvas sent to a client when it joins.
type DocSyncPayload struct {
	Canvas    document.Canvas `json:"canvas"`
	ServerSeq int64           `json:"serverSeq"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types.
const (
	OpStrokeCreate  = "stroke.create"
	OpStrokePoint   = "stroke.point"
	OpStrokeEnd     = "stroke.end"
	OpStrokePoints  = "stroke.points"
	OpStrokeStyle   = "stroke.style"
	OpStrokeHitSlop = "stroke.hitSlop"
	OpStrokeDelete  = "stroke.delete"
	OpCanvasStyle   = "canvas.style"
	OpCanvasHitSlop = "canvas.hitSlop"
	OpCanvasSave    = "canvas.save"
	OpCanvasRestore = "canvas.restore"
	OpCanvasClear   = "canvas.clear"
	OpCanvasUndo    = "canvas.undo"
	OpHitTest       = "hit.test"
)

// --- Operation Types ---

// Operation represents a canvas mutation or query. Which fields are read
// depends on Type.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	StrokeID  string `json:"strokeId,omitempty"`

	// For stroke.point / hit.test
	Point *geom.Point `json:"point,omitempty"`

	// For stroke.points
	Points  []geom.Point `json:"points,omitempty"`
	Animate bool         `json:"animate,omitempty"`

	// For stroke.create / stroke.style / canvas.style
	Color *stroke.Color `json:"color,omitempty"`
	Width *float64      `json:"width,omitempty"`

	// For stroke.create / stroke.hitSlop / canvas.hitSlop
	HitSlop     *geom.HitSlop `json:"hitSlop,omitempty"`
	OverrideAll bool          `json:"overrideAll,omitempty"`

	// For canvas.restore; nil pops one level
	Level *int `json:"level,omitempty"`

	// For stroke.delete
	StrokeIDs []string `json:"strokeIds,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string          `json:"operationId"`
	ServerSeq       int64           `json:"serverSeq"`
	ServerTimestamp int64           `json:"serverTimestamp"`
	Result          json.RawMessage `json:"result,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation       `json:"operation"`
	UserID    string          `json:"userId"`
	ServerSeq int64           `json:"serverSeq"`
	Result    json.RawMessage `json:"result,omitempty"`
}
