package collab

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/metrics"
	"github.com/inamate/inkcanvas/internal/typeid"
)

// CanvasLoader resolves the canvas a room edits.
type CanvasLoader func(canvasID string) (*canvas.Canvas, error)

type Room struct {
	// opMu orders apply and fan-out so every client sees broadcasts in
	// serverSeq order.
	opMu sync.Mutex

	canvasID string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *CanvasState
}

func NewRoom(canvasID string, c *canvas.Canvas) *Room {
	return &Room{
		canvasID: canvasID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    NewCanvasState(c),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // canvasID -> room
	register   chan *Client
	unregister chan *Client
	loader     CanvasLoader

	done     chan struct{}
	stopOnce sync.Once
}

func NewHub(loader CanvasLoader) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loader:     loader,
		done:       make(chan struct{}),
	}
}

// Run processes joins and leaves until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run. Clients still connected are dropped when their
// connections close.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Room returns the live state of a canvas with connected clients.
func (h *Hub) Room(canvasID string) (*CanvasState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[canvasID]
	if !ok {
		return nil, false
	}
	return room.state, true
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.CanvasID]
	if !ok {
		c, err := h.loader(client.CanvasID)
		if err != nil {
			h.mu.Unlock()
			slog.Warn("load canvas", "canvas", client.CanvasID, "error", err)
			client.Send(errorMessage(err.Error()))
			client.closeSend()
			return
		}
		room = NewRoom(client.CanvasID, c)
		h.rooms[client.CanvasID] = room
		metrics.OpenRooms.Set(float64(len(h.rooms)))
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()
	metrics.ConnectedClients.Inc()

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, UserID: client.UserID})
	client.Send(&Message{Type: TypeWelcome, CanvasID: client.CanvasID, Payload: welcome})

	// Send the current canvas, then presence, to the new client
	snapshot := room.state.Sync()
	syncPayload, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("marshal doc sync", "error", err)
	} else {
		client.Send(&Message{Type: TypeDocSync, CanvasID: client.CanvasID, Seq: snapshot.ServerSeq, Payload: syncPayload})
	}

	if msg := room.presence.StateMessage(); msg != nil {
		client.Send(msg)
	}

	h.broadcastToRoom(client.CanvasID, userMessage(TypePresenceJoin, client.UserID,
		PresenceJoinPayload{UserID: client.UserID, DisplayName: client.DisplayName}), client.ClientID)

	slog.Info("client joined", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.CanvasID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)
	stillConnected := false
	for _, c := range room.clients {
		if c.UserID == client.UserID {
			stillConnected = true
			break
		}
	}

	if len(room.clients) == 0 {
		delete(h.rooms, client.CanvasID)
		metrics.OpenRooms.Set(float64(len(h.rooms)))
	}
	h.mu.Unlock()
	metrics.ConnectedClients.Dec()

	if !stillConnected {
		h.endAbandoned(room, client.UserID)
	}

	h.broadcastToRoom(client.CanvasID, userMessage(TypePresenceLeave, client.UserID,
		PresenceLeavePayload{UserID: client.UserID}), "")

	slog.Info("client left", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOperation(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(errorMessage("unknown message type: " + msg.Type))
	}
}

func (h *Hub) handleOperation(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(errorMessage("invalid operation payload"))
		return
	}
	op := submit.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.CanvasID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if op.Type == OpHitTest {
		metrics.HitTests.Inc()
	}

	if err := h.publish(room, &op, sender.UserID, sender); err != nil {
		slog.Debug("operation rejected", "op", op.Type, "user", sender.UserID, "error", err)
		nack, _ := json.Marshal(OperationNackPayload{OperationID: op.ID, Reason: nackReason(err)})
		sender.Send(&Message{Type: TypeOpNack, CanvasID: sender.CanvasID, Payload: nack})
		return
	}

	drawing := room.presence.Drawing(sender.UserID)
	switch op.Type {
	case OpStrokeCreate:
		h.setDrawing(room, sender, op.StrokeID)
	case OpStrokeEnd:
		if drawing == op.StrokeID {
			h.setDrawing(room, sender, "")
		}
	case OpStrokeDelete, OpCanvasUndo, OpCanvasClear:
		if drawing == "" {
			break
		}
		if _, err := room.state.Canvas().Stroke(drawing); err != nil {
			h.setDrawing(room, sender, "")
		}
	}
}

// publish applies op for userID, acks it to sender when there is one, and
// broadcasts it to the rest of the room.
func (h *Hub) publish(room *Room, op *Operation, userID string, sender *Client) error {
	room.opMu.Lock()
	defer room.opMu.Unlock()

	applied, err := room.state.ApplyOperation(op, userID)
	if err != nil {
		metrics.OpsApplied.WithLabelValues(op.Type, metrics.OutcomeNack).Inc()
		return err
	}
	metrics.OpsApplied.WithLabelValues(op.Type, metrics.OutcomeAck).Inc()

	result, _ := json.Marshal(applied.Result)
	exclude := ""
	if sender != nil {
		exclude = sender.ClientID
		ack, _ := json.Marshal(OperationAckPayload{
			OperationID:     op.ID,
			ServerSeq:       applied.ServerSeq,
			ServerTimestamp: time.Now().UnixMilli(),
			Result:          result,
		})
		sender.Send(&Message{Type: TypeOpAck, CanvasID: room.canvasID, Seq: applied.ServerSeq, Payload: ack})
	}

	if !applied.Broadcast {
		return nil
	}
	out, _ := json.Marshal(OperationBroadcastPayload{
		Operation: *op,
		UserID:    userID,
		ServerSeq: applied.ServerSeq,
		Result:    result,
	})
	h.broadcastToRoom(room.canvasID, &Message{
		Type:     TypeOpBroadcast,
		CanvasID: room.canvasID,
		UserID:   userID,
		Seq:      applied.ServerSeq,
		Payload:  out,
	}, exclude)
	return nil
}

// endAbandoned ends the strokes a departed user left mid-interaction so
// Clear and Undo can reach them again. Peers get an ordinary stroke.end.
func (h *Hub) endAbandoned(room *Room, userID string) {
	for _, id := range room.state.Canvas().InteractingBy(userID) {
		op := Operation{
			ID:        typeid.NewOpID(),
			Type:      OpStrokeEnd,
			Timestamp: time.Now().UnixMilli(),
			StrokeID:  id,
		}
		if err := h.publish(room, &op, userID, nil); err != nil {
			slog.Warn("end abandoned stroke", "stroke", id, "user", userID, "error", err)
		}
	}
}

// nackReason maps canvas errors onto stable reason codes; anything else
// carries its message.
func nackReason(err error) string {
	switch {
	case errors.Is(err, canvas.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, canvas.ErrUnknownID):
		return "unknown_id"
	case errors.Is(err, canvas.ErrInvalidSaveCount):
		return "invalid_save_count"
	case errors.Is(err, canvas.ErrNothingToUndo):
		return "nothing_to_undo"
	case errors.Is(err, ErrUnknownOperation):
		return "unknown_operation"
	default:
		return err.Error()
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.CanvasID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	h.broadcastPresence(room, sender, room.presence.Update(sender.UserID, presence))
}

// setDrawing records the sender's stroke in progress and tells the room.
func (h *Hub) setDrawing(room *Room, sender *Client, strokeID string) {
	p, changed := room.presence.SetDrawing(sender.UserID, strokeID)
	if !changed {
		return
	}
	p.DisplayName = sender.DisplayName
	h.broadcastPresence(room, sender, p)
}

func (h *Hub) broadcastPresence(room *Room, sender *Client, p PresencePayload) {
	h.broadcastToRoom(room.canvasID, userMessage(TypePresenceUpdate, sender.UserID, p), sender.ClientID)
}

func (h *Hub) broadcastToRoom(canvasID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[canvasID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

// userMessage wraps a presence payload about userID.
func userMessage(typ, userID string, v any) *Message {
	payload, _ := json.Marshal(v)
	return &Message{Type: typ, UserID: userID, Payload: payload}
}

func errorMessage(text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{Type: TypeError, Payload: payload}
}
