package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/k2wGG/Check-bot/internal/config"
	"github.com/k2wGG/Check-bot/internal/logbus"
	"github.com/k2wGG/Check-bot/internal/store/sqlite"
	"github.com/k2wGG/Check-bot/internal/ws"
)

type Options struct {
	Cfg   config.Config
	Bus   *logbus.Bus
	Store *sqlite.Store
}

// Server is the read-only status surface: recent check-in history, the
// buffered log snapshot and a live log stream over websocket.
type Server struct {
	cfg   config.Config
	bus   *logbus.Bus
	store *sqlite.Store
	ws    *ws.Handler
}

func New(opts Options) *Server {
	return &Server{
		cfg:   opts.Cfg,
		bus:   opts.Bus,
		store: opts.Store,
		ws:    ws.NewHandler(opts.Bus, opts.Cfg.Server.Cors.AllowOrigins),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/ws", s.ws)

	api := http.NewServeMux()
	api.HandleFunc("/api/v1/history", s.handleHistory)
	api.HandleFunc("/api/v1/logs", s.handleLogs)

	mux.Handle("/api/", corsMiddleware(s.cfg.Server.Cors, api))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	records, err := s.store.ListCheckins(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.bus.Snapshot()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
