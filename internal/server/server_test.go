package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/explaingit/internal/scenario"
	"github.com/kurobon/explaingit/internal/state"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	sm := state.NewSessionManager()
	catalog, err := scenario.NewCatalog(scenario.Builtin())
	require.NoError(t, err)
	sm.Scenarios = catalog

	srv := NewServer(sm)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServerEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	var sessionID string

	t.Run("Ping", func(t *testing.T) {
		var res map[string]string
		assert.Equal(t, http.StatusOK, get(t, ts, "/ping", &res))
		assert.Equal(t, "pong", res["message"])
	})

	t.Run("InitSession", func(t *testing.T) {
		var res map[string]string
		assert.Equal(t, http.StatusOK, post(t, ts, "/api/session/init", nil, &res))
		sessionID = res["sessionId"]
		require.NotEmpty(t, sessionID)
	})

	t.Run("Commit", func(t *testing.T) {
		var res CommandResponse
		code := post(t, ts, "/api/command", CommandRequest{SessionID: sessionID, Command: `git commit -m "hello"`}, &res)
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, res.Error)
		assert.True(t, strings.HasPrefix(res.Output, "[master "), res.Output)
		assert.True(t, strings.HasSuffix(res.Output, "] hello"), res.Output)
		assert.Equal(t, uint64(1), res.Version)
	})

	t.Run("FailedCommand", func(t *testing.T) {
		var res CommandResponse
		code := post(t, ts, "/api/command", CommandRequest{SessionID: sessionID, Command: "git merge nope"}, &res)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "merge: nope - not something we can merge", res.Error)
		assert.Equal(t, "RefNotFound", res.Kind)
		assert.Equal(t, uint64(1), res.Version)
	})

	t.Run("State", func(t *testing.T) {
		var graph state.GraphState
		assert.Equal(t, http.StatusOK, get(t, ts, "/api/state?sessionId="+sessionID, &graph))
		assert.True(t, graph.Initialized)
		assert.Len(t, graph.Commits, 2)
		assert.Equal(t, "hello", graph.Commits[0].Message)
		assert.Equal(t, "branch", graph.HEAD.Type)
		assert.Equal(t, "master", graph.HEAD.Ref)
		assert.False(t, graph.HasRemote)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/api/command")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("BadBody", func(t *testing.T) {
		resp, err := ts.Client().Post(ts.URL+"/api/command", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ResetSession", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(t, ts, "/api/session/reset", SessionRequest{SessionID: sessionID}, nil))
		var graph state.GraphState
		get(t, ts, "/api/state?sessionId="+sessionID, &graph)
		assert.Len(t, graph.Commits, 1)
		assert.Equal(t, uint64(2), graph.Version)
	})
}

func TestExecCommand_RestoresUnknownSession(t *testing.T) {
	srv, ts := newTestServer(t)

	var res CommandResponse
	post(t, ts, "/api/command", CommandRequest{SessionID: "after-restart", Command: "branch dev"}, &res)
	assert.Empty(t, res.Error)

	s, ok := srv.SessionManager.GetSession("after-restart")
	require.True(t, ok)
	_, found := s.Local.LookupBranch("dev")
	assert.True(t, found)
}

func TestScenarioEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	const sessionID = "learner"

	var list []map[string]any
	assert.Equal(t, http.StatusOK, get(t, ts, "/api/scenarios", &list))
	ids := make([]string, 0, len(list))
	for _, sc := range list {
		ids = append(ids, sc["id"].(string))
	}
	assert.Contains(t, ids, "branch")
	assert.Contains(t, ids, "push")

	var started map[string]any
	code := post(t, ts, "/api/scenarios/start", ScenarioRequest{SessionID: sessionID, ScenarioID: "branch"}, &started)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Branch", started["title"])

	var result scenario.VerificationResult
	post(t, ts, "/api/scenarios/verify", SessionRequest{SessionID: sessionID}, &result)
	assert.False(t, result.Success)

	post(t, ts, "/api/command", CommandRequest{SessionID: sessionID, Command: "git branch feature"}, nil)
	post(t, ts, "/api/scenarios/verify", SessionRequest{SessionID: sessionID}, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "branch", result.ScenarioID)

	var errRes map[string]string
	code = post(t, ts, "/api/scenarios/start", ScenarioRequest{SessionID: sessionID, ScenarioID: "nope"}, &errRes)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, errRes["error"], "nope")

	code = post(t, ts, "/api/scenarios/verify", SessionRequest{SessionID: "stranger"}, &errRes)
	assert.Equal(t, http.StatusBadRequest, code)
}
