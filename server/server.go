// Package server exposes a running session over HTTP and WebSocket. The
// JSON API covers lifecycle, state, screenshots, manual actions, assignment
// and commentary history; the WebSocket endpoint relays the session's event
// stream to browsers and dashboards.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vaibhavi8/autoplay"
	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/logging"
)

// Options configures a Server.
type Options struct {
	// CommentaryLimit caps how many history entries one request returns.
	CommentaryLimit int
	// Logger receives request diagnostics.
	Logger logging.Logger
}

// Server adapts a Session to HTTP.
type Server struct {
	session *autoplay.Session
	opts    Options
	mux     *http.ServeMux
}

// New builds a Server around the given session.
func New(session *autoplay.Session, optFns ...func(o *Options)) *Server {
	opts := Options{
		CommentaryLimit: 200,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{session: session, opts: opts, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/start", s.handleStart)
	s.mux.HandleFunc("POST /api/stop", s.handleStop)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/screenshot", s.handleScreenshot)
	s.mux.HandleFunc("GET /api/assignment", s.handleGetAssignment)
	s.mux.HandleFunc("POST /api/assignment", s.handleSetAssignment)
	s.mux.HandleFunc("POST /api/execute_action", s.handleExecuteAction)
	s.mux.HandleFunc("POST /api/execute_sequence", s.handleExecuteSequence)
	s.mux.HandleFunc("GET /api/commentary", s.handleCommentary)
	s.mux.HandleFunc("GET /ws", s.handleWS)

	return s
}

// Handler returns the routable HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  s.session.Status().String(),
		"frames":  s.session.FrameCount(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  s.session.Status().String(),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Stop(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  s.session.Status().String(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.CurrentState())
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	png, err := s.session.CurrentScreenshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.opts.Logger.Warn("screenshot write failed", "error", err)
	}
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Assignment())
}

func (s *Server) handleSetAssignment(w http.ResponseWriter, r *http.Request) {
	var cfg core.AssignmentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	if err := s.session.SetAssignment(cfg); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"assignment": s.session.Assignment(),
	})
}

type actionRequest struct {
	Action     string   `json:"action"`
	Actions    []string `json:"actions"`
	Commentary string   `json:"commentary"`
}

func (s *Server) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.session.ExecuteAction(req.Action, req.Commentary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"executed": res.Executed,
	})
}

func (s *Server) handleExecuteSequence(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.session.ExecuteActionSequence(req.Actions, req.Commentary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"executed":  res.Executed,
		"completed": res.Completed,
	})
}

func (s *Server) handleCommentary(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.CommentaryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeErrorStatus(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		if n < limit {
			limit = n
		}
	}
	entries, err := s.session.CommentaryHistory(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []core.CommentaryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"commentary": entries,
	})
}

// writeError maps the session error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidAction):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, core.ErrResource):
		status = http.StatusServiceUnavailable
	case errors.Is(err, core.ErrAgentTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, core.ErrAgent):
		status = http.StatusBadGateway
	}
	s.writeErrorStatus(w, status, err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
