package server

import (
	"net/http"

	"github.com/kurobon/explaingit/internal/scenario"
)

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	list := []*scenario.Scenario{}
	if s.SessionManager.Scenarios != nil {
		list = s.SessionManager.Scenarios.List()
	}
	writeJSON(w, http.StatusOK, list)
}

type ScenarioRequest struct {
	SessionID  string `json:"sessionId"`
	ScenarioID string `json:"scenarioId"`
}

func (s *Server) handleStartScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.ScenarioID == "" {
		http.Error(w, "sessionId and scenarioId required", http.StatusBadRequest)
		return
	}
	if _, err := s.sessionFor(req.SessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	sc, err := s.SessionManager.StartScenario(req.SessionID, req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleVerifyScenario(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.SessionManager.VerifyScenario(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
