package server

import (
	"errors"
	"net/http"

	"github.com/kurobon/explaingit/internal/model"
)

// statusFor maps an action error to a response status.
func statusFor(err error) int {
	var me *model.Error
	if !errors.As(err, &me) {
		return http.StatusInternalServerError
	}
	switch me.Kind {
	case model.KindBranchNotFound, model.KindRefNotFound, model.KindCommitNotFound:
		return http.StatusNotFound
	case model.KindNoRemote, model.KindNameAlreadyExists, model.KindNoCurrentBranch:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleGetRemoteState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}
	if _, err := s.sessionFor(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// A session without a remote gets an uninitialized state, not an error.
	graph, err := s.SessionManager.GetRemoteGraphState(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

type SimulateCommitRequest struct {
	SessionID string `json:"sessionId"`
	Branch    string `json:"branch"`
	Message   string `json:"message"`
}

func (s *Server) handleSimulateRemoteCommit(w http.ResponseWriter, r *http.Request) {
	var req SimulateCommitRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := s.sessionFor(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.SessionManager.SimulateRemoteCommit(req.SessionID, req.Branch, req.Message)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"id":      c.ID,
		"message": c.Message,
	})
}

type IngestRequest struct {
	SessionID string `json:"sessionId"`
	Dir       string `json:"dir"`
}

// handleIngestRemote imports an on-disk git repository as the session's
// origin.
func (s *Server) handleIngestRemote(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dir == "" {
		http.Error(w, "dir required", http.StatusBadRequest)
		return
	}
	if _, err := s.sessionFor(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.SessionManager.IngestRemote(req.SessionID, req.Dir); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCreateRemote publishes the local repository as a new origin.
func (s *Server) handleCreateRemote(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := s.sessionFor(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.SessionManager.CreateRemote(req.SessionID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Repository created successfully",
		"name":    session.RemoteName(),
	})
}

func (s *Server) handleResetRemote(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.SessionManager.RemoveRemote(req.SessionID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
