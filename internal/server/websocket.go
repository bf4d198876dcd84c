package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quoteboard/internal/dashboard"
)

const writeWait = 10 * time.Second

// handleWebSocket streams the dashboard view for the ?q= term: the current
// view first, then one per change.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	term := r.URL.Query().Get("q")
	id := uuid.NewString()
	broker := s.board.Broker()
	sub := broker.Subscribe(id, 1)
	defer broker.Unsubscribe(id)

	slog.Debug("websocket client connected", "id", id, "term", term)

	// The client never sends anything meaningful; reading detects disconnects
	// and processes control frames.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.send(conn, dashboard.Project(s.board.State(), term)); err != nil {
		return
	}

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			slog.Debug("websocket client disconnected", "id", id)
			return
		case state, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := s.send(conn, dashboard.Project(state, term)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, view dashboard.View) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(view); err != nil {
		slog.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
