package server

import (
	"errors"
	"net/http"

	"github.com/kurobon/explaingit/internal/git/commands"
	"github.com/kurobon/explaingit/internal/model"
)

type CommandRequest struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

type CommandResponse struct {
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Version uint64 `json:"version"`
}

// handleExecCommand runs one command line. Command failures are reported in
// the body with status 200, as a terminal would print them.
func (s *Server) handleExecCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}
	session, err := s.sessionFor(req.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	output, err := commands.Run(r.Context(), session, req.Command)
	resp := CommandResponse{Output: output}
	if err != nil {
		resp.Error = err.Error()
		var me *model.Error
		if errors.As(err, &me) {
			resp.Kind = me.Kind.String()
		}
	}
	session.RLock()
	resp.Version = session.Version
	session.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}
