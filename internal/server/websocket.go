package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		return true
	},
}

// Progress event types pushed over the websocket.
const (
	ProgressRunStarted    = "run_started"
	ProgressStepCompleted = "step_completed"
	ProgressRunCompleted  = "run_completed"
	ProgressRunError      = "run_error"
)

// WebSocketConnWriter is the subset of a websocket connection the hub
// writes through.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// ProgressMessage is one run lifecycle event pushed to connected clients.
type ProgressMessage struct {
	Type       string                   `json:"type"`
	TotalSteps int                      `json:"total_steps,omitempty"`
	Result     *model.ValidationResult  `json:"result,omitempty"`
	Summary    *model.ValidationSummary `json:"summary,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Time       string                   `json:"time"`
}

// progressHub fans run lifecycle events out to all connected websocket
// clients. Writes are serialized so events arrive in engine order.
type progressHub struct {
	mu      sync.Mutex
	clients map[WebSocketConnWriter]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{clients: make(map[WebSocketConnWriter]struct{})}
}

func (h *progressHub) add(conn WebSocketConnWriter) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	websocketConnections.Inc()
}

func (h *progressHub) remove(conn WebSocketConnWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		websocketConnections.Dec()
	}
}

func (h *progressHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast sends one message to every client. Clients whose write fails
// are dropped.
func (h *progressHub) broadcast(msg ProgressMessage) {
	if msg.Time == "" {
		msg.Time = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal progress message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("Dropping websocket client", "error", err)
			delete(h.clients, conn)
			websocketConnections.Dec()
			continue
		}
		websocketMessagesTotal.WithLabelValues("sent").Inc()
	}
}

// progressObserver bridges engine notifications onto the websocket hub.
type progressObserver struct {
	validation.NoOpObserver
	hub *progressHub
}

func newProgressObserver(hub *progressHub) *progressObserver {
	return &progressObserver{hub: hub}
}

func (o *progressObserver) OnRunStart(total int) {
	o.hub.broadcast(ProgressMessage{Type: ProgressRunStarted, TotalSteps: total})
}

func (o *progressObserver) OnStepComplete(result model.ValidationResult) {
	o.hub.broadcast(ProgressMessage{Type: ProgressStepCompleted, Result: &result})
}

func (o *progressObserver) OnRunComplete(results []model.ValidationResult) {
	summary := validation.Summarize(results)
	o.hub.broadcast(ProgressMessage{
		Type:       ProgressRunCompleted,
		TotalSteps: len(results),
		Summary:    &summary,
	})
}

func (o *progressObserver) OnError(err error, step *model.TestStep) {
	o.hub.broadcast(ProgressMessage{Type: ProgressRunError, Error: err.Error()})
}

// progressWebSocketHandler upgrades the connection and streams run
// lifecycle events until the client disconnects.
func (s *Server) progressWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.keepAlive(conn)
}

// keepAlive reads until the connection drops, extending the read deadline
// on every pong and pinging on a fixed interval.
func (s *Server) keepAlive(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep the connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
	}
}
