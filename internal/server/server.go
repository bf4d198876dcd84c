package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quoteboard/internal/coordinator"
	"quoteboard/internal/dashboard"
	"quoteboard/internal/ratelimit"
)

// Refresher requests an out-of-band refresh round.
type Refresher interface {
	Refresh(trigger ratelimit.Trigger) error
}

// Server exposes the dashboard over HTTP and WebSocket.
type Server struct {
	board     *dashboard.Dashboard
	refresher Refresher
	upgrader  websocket.Upgrader

	// pingInterval is how often idle WebSocket clients are pinged.
	pingInterval time.Duration
}

// New creates a server for board. refresher may be nil, in which case manual
// refresh is unavailable.
func New(board *dashboard.Dashboard, refresher Refresher) *Server {
	return &Server{
		board:     board,
		refresher: refresher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same policy as the CORS headers below.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingInterval: 30 * time.Second,
	}
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return withJSONHeaders(recoverPanic(mux))
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	view := dashboard.Project(s.board.State(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, view)
}

type chartResponse struct {
	Points    []dashboard.Point `json:"points"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	state := s.board.State()
	writeJSON(w, http.StatusOK, chartResponse{
		Points:    dashboard.Series(state.Batch),
		UpdatedAt: state.Batch.FetchedAt,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not available")
		return
	}

	err := s.refresher.Refresh(ratelimit.TriggerHTTP)
	switch {
	case errors.Is(err, coordinator.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, coordinator.ErrRoundInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.Error("manual refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS so a browser widget on another origin can read the API.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic", "path", r.URL.Path, "panic", rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
