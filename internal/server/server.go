// Package server exposes sessions, commands, graph state and scenarios as a
// JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kurobon/explaingit/internal/state"
)

const system = "explaingit"

type Server struct {
	SessionManager *state.SessionManager
	Mux            *http.ServeMux
}

func NewServer(sm *state.SessionManager) *Server {
	s := &Server{
		SessionManager: sm,
		Mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Mux.HandleFunc("GET /ping", s.handlePing)
	s.Mux.HandleFunc("POST /api/session/init", s.handleInitSession)
	s.Mux.HandleFunc("POST /api/session/reset", s.handleResetSession)
	s.Mux.HandleFunc("POST /api/command", s.handleExecCommand)
	s.Mux.HandleFunc("GET /api/state", s.handleGetGraphState)

	s.Mux.HandleFunc("GET /api/remote/state", s.handleGetRemoteState)
	s.Mux.HandleFunc("POST /api/remote/create", s.handleCreateRemote)
	s.Mux.HandleFunc("POST /api/remote/simulate-commit", s.handleSimulateRemoteCommit)
	s.Mux.HandleFunc("POST /api/remote/ingest", s.handleIngestRemote)
	s.Mux.HandleFunc("POST /api/remote/reset", s.handleResetRemote)

	s.Mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	s.Mux.HandleFunc("POST /api/scenarios/start", s.handleStartScenario)
	s.Mux.HandleFunc("POST /api/scenarios/verify", s.handleVerifyScenario)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.Mux.ServeHTTP(rec, r)
	log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("took", time.Since(start)).
		Msg("request")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// sessionFor returns the session with id, recreating it when the server
// restarted since the client obtained the id.
func (s *Server) sessionFor(id string) (*state.Session, error) {
	if session, ok := s.SessionManager.GetSession(id); ok {
		return session, nil
	}
	log.Info().Str("session", id).Msg("session not found, recreating")
	return s.SessionManager.CreateSession(id)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "pong",
		"system":  system,
	})
}

func (s *Server) handleInitSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	if _, err := s.SessionManager.CreateSession(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "session created",
		"sessionId": sessionID,
	})
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.SessionManager.ResetSession(req.SessionID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGetGraphState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}
	if _, err := s.sessionFor(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	showAll := r.URL.Query().Get("showAll") == "true"
	graph, err := s.SessionManager.GetGraphState(sessionID, showAll)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}
