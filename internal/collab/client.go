package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024 // stroke.points can carry a whole path
	sendBuffer = 256
)

// errSendClosed ends the write pump once the hub has dropped the client.
var errSendClosed = errors.New("send channel closed")

// Client is one websocket connection joined to a canvas room.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	UserID      string
	DisplayName string
	CanvasID    string
	ClientID    string

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, canvasID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		CanvasID:    canvasID,
		ClientID:    clientID,
	}
}

// ServeWS upgrades the request and serves the client until either side
// hangs up. The read and write pumps share one context; when one stops the
// other follows.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, originPatterns []string, userID, displayName, canvasID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}
	conn.SetReadLimit(maxMsgSize)

	client := NewClient(hub, conn, userID, displayName, canvasID, uuid.New().String())
	hub.Register(client)
	defer hub.Unregister(client)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return client.readPump(ctx) })
	g.Go(func() error { return client.writePump(ctx) })
	err = g.Wait()

	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure, status == websocket.StatusGoingAway:
		conn.Close(websocket.StatusNormalClosure, "")
	case errors.Is(err, errSendClosed):
		conn.Close(websocket.StatusGoingAway, "closed by server")
	default:
		slog.Debug("connection ended", "user", client.UserID, "canvas", client.CanvasID, "error", err)
		conn.Close(websocket.StatusInternalError, "")
	}
}

// readPump feeds incoming messages to the hub. A message that is not valid
// JSON closes the connection.
func (c *Client) readPump(ctx context.Context) error {
	for {
		var msg Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return err
		}

		// Identity comes from the connection, never the payload.
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.CanvasID = c.CanvasID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return errSendClosed
			}
			if err := c.write(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, websocket.MessageText, message)
			}); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.write(ctx, c.conn.Ping); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return fn(ctx)
}

// Send queues msg for the client. Slow clients lose messages rather than
// stall the room.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.UserID)
	}
}

// closeSend ends writePump. Sends after this are dropped.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
