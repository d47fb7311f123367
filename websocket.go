package aior

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType distinguishes text from binary data frames.
type MessageType int

// Data frame types.
const (
	TextMessage   MessageType = websocket.TextMessage
	BinaryMessage MessageType = websocket.BinaryMessage
)

// Message is one data frame received from the peer.
type Message struct {
	Type MessageType
	Data []byte
}

// Text returns the payload as a string.
func (m Message) Text() string { return string(m.Data) }

// WebSocketHandler receives the lifecycle events of one connection. Callbacks
// for a connection are invoked sequentially from a single goroutine.
//
// OnOpen runs once after the upgrade. OnMessage runs per data frame; a
// non-nil error is passed to OnError and the connection is closed. OnClose
// runs when the peer sends a close frame, OnEOF when the stream ends without
// one, and OnError for any other read failure. OnPing and OnPong observe
// control frames; pings are answered automatically.
type WebSocketHandler interface {
	OnOpen(ctx context.Context, conn *Conn) error
	OnMessage(ctx context.Context, conn *Conn, msg Message) error
	OnClose(ctx context.Context, conn *Conn, code int, reason string)
	OnError(ctx context.Context, conn *Conn, err error)
	OnEOF(ctx context.Context, conn *Conn)
	OnPing(ctx context.Context, conn *Conn, data string)
	OnPong(ctx context.Context, conn *Conn, data string)
}

// WebSocketFactory creates the handler for a new connection.
type WebSocketFactory func() WebSocketHandler

// BaseWebSocketHandler implements every WebSocketHandler callback as a
// no-op. Embed it and override the callbacks you need.
type BaseWebSocketHandler struct{}

func (BaseWebSocketHandler) OnOpen(context.Context, *Conn) error             { return nil }
func (BaseWebSocketHandler) OnMessage(context.Context, *Conn, Message) error { return nil }
func (BaseWebSocketHandler) OnClose(context.Context, *Conn, int, string)     {}
func (BaseWebSocketHandler) OnError(context.Context, *Conn, error)           {}
func (BaseWebSocketHandler) OnEOF(context.Context, *Conn)                    {}
func (BaseWebSocketHandler) OnPing(context.Context, *Conn, string)           {}
func (BaseWebSocketHandler) OnPong(context.Context, *Conn, string)           {}

const controlWriteWait = 5 * time.Second

// Conn is the server side of an upgraded connection. Its send methods are
// safe for concurrent use.
type Conn struct {
	ws      *websocket.Conn
	request *http.Request

	mu sync.Mutex
}

// Request returns the upgrade request.
func (c *Conn) Request() *http.Request { return c.request }

// SendText writes a text frame.
func (c *Conn) SendText(s string) error {
	return c.write(websocket.TextMessage, []byte(s))
}

// SendBinary writes a binary frame.
func (c *Conn) SendBinary(b []byte) error {
	return c.write(websocket.BinaryMessage, b)
}

// SendJSON writes v as a JSON text frame.
func (c *Conn) SendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, b)
}

// Close sends a close frame with the given code and reason. The read loop
// ends once the peer acknowledges or the connection drops.
func (c *Conn) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	return c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(controlWriteWait))
}

func (c *Conn) write(mt int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(mt, data)
}

// WithCheckOrigin sets the origin check used when upgrading connections.
// By default cross-origin upgrades are rejected.
func WithCheckOrigin(fn func(r *http.Request) bool) RouterOption {
	return func(r *Router) {
		r.upgrader.CheckOrigin = fn
	}
}

func defaultUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

func (r *Router) serveWebSocket(w http.ResponseWriter, req *http.Request, res *Resource) {
	if req.Method != http.MethodGet {
		r.writeErr(w, req, ErrMethodNotAllowed)
		return
	}
	ws, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		r.logger.LogAttrs(req.Context(), slog.LevelWarn, "websocket upgrade failed",
			slog.String("route", RouteTemplate(req.Context())),
			slog.String("error", err.Error()),
		)
		return
	}
	defer ws.Close()

	runSession(req.Context(), &Conn{ws: ws, request: req}, res.ws())
}

// runSession dispatches events for one connection until it ends.
func runSession(ctx context.Context, conn *Conn, h WebSocketHandler) {
	conn.ws.SetPingHandler(func(data string) error {
		h.OnPing(ctx, conn, data)
		err := conn.ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(controlWriteWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})
	conn.ws.SetPongHandler(func(data string) error {
		h.OnPong(ctx, conn, data)
		return nil
	})

	if err := h.OnOpen(ctx, conn); err != nil {
		h.OnError(ctx, conn, err)
		_ = conn.Close(websocket.CloseInternalServerErr, "")
		return
	}

	for {
		mt, data, err := conn.ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			switch {
			case errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure:
				h.OnClose(ctx, conn, ce.Code, ce.Text)
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &ce):
				h.OnEOF(ctx, conn)
			default:
				h.OnError(ctx, conn, err)
			}
			return
		}
		if err := h.OnMessage(ctx, conn, Message{Type: MessageType(mt), Data: data}); err != nil {
			h.OnError(ctx, conn, err)
			_ = conn.Close(websocket.CloseInternalServerErr, "")
			return
		}
	}
}
