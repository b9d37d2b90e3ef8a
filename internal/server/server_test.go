package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixell-labs/workflow-testagent/internal/protocol"
	"github.com/pixell-labs/workflow-testagent/internal/scenario"
	"github.com/pixell-labs/workflow-testagent/internal/session"
)

func newTestServer(t *testing.T, scenarioName string) (*Server, *session.Store) {
	t.Helper()
	store := session.NewStore()
	engine := scenario.NewEngine(store, scenarioName, 0, logr.Discard())
	return New(store, engine, logr.Discard()), store
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// frames splits an SSE body into its data frames, preserving order.
func frames(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	for _, chunk := range strings.Split(body, "\n\n") {
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

type rpcFrame struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
}

func decodeFrame(t *testing.T, frame string) rpcFrame {
	t.Helper()
	require.True(t, strings.HasPrefix(frame, "data: "))
	var f rpcFrame
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &f))
	return f
}

const messageBodyJSON = `{
	"jsonrpc": "2.0",
	"method": "message/stream",
	"id": "req-1",
	"params": {
		"sessionId": "sess-1",
		"workflowId": "wf-1",
		"message": {"parts": [{"text": "hello"}]}
	}
}`

func TestHandleMessage_StreamShape(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)

	rec := do(t, srv, http.MethodPost, "/", messageBodyJSON)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.True(t, rec.Flushed)

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "data: [DONE]"))
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))

	fs := frames(t, body)
	require.Len(t, fs, 3) // working, message, sentinel
	assert.Equal(t, "data: [DONE]", fs[len(fs)-1])

	first := decodeFrame(t, fs[0])
	assert.Equal(t, "2.0", first.JSONRPC)
	assert.Equal(t, "req-1", first.ID)

	var result map[string]any
	require.NoError(t, json.Unmarshal(first.Result, &result))
	assert.Equal(t, protocol.KindStatusUpdate, result["kind"])
	assert.Equal(t, "sess-1", result["sessionId"])
}

func TestHandleMessage_GeneratesRequestID(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)

	rec := do(t, srv, http.MethodPost, "/", `{"params": {"message": {"parts": [{"text": "hi"}]}}}`)
	fs := frames(t, rec.Body.String())
	require.GreaterOrEqual(t, len(fs), 2)

	first := decodeFrame(t, fs[0])
	id, ok := first.ID.(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)

	second := decodeFrame(t, fs[1])
	assert.Equal(t, id, second.ID, "all frames of one response share the request id")
}

func TestHandleMessage_PlanModeFromEitherMetadataLocation(t *testing.T) {
	for name, body := range map[string]string{
		"message metadata": `{"id": "r", "params": {"sessionId": "s1", "message": {"parts": [{"text": "go"}], "metadata": {"plan_mode_enabled": true}}}}`,
		"params metadata":  `{"id": "r", "params": {"sessionId": "s1", "message": {"parts": [{"text": "go"}]}, "metadata": {"planMode": true}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, scenario.FullPlanMode)
			rec := do(t, srv, http.MethodPost, "/", body)
			assert.Contains(t, rec.Body.String(), `"clarification_needed"`)
		})
	}
}

func TestHandleMessage_PlanModeAbsentTakesDirectPath(t *testing.T) {
	srv, _ := newTestServer(t, scenario.FullPlanMode)

	rec := do(t, srv, http.MethodPost, "/", messageBodyJSON)
	body := rec.Body.String()
	assert.NotContains(t, body, "clarification_needed")
	assert.Contains(t, body, "direct execution response")
}

func TestHandleMessage_BadBody(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)
	rec := do(t, srv, http.MethodPost, "/", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRespond_UnknownResponseType(t *testing.T) {
	srv, store := newTestServer(t, scenario.FullPlanMode)

	rec := do(t, srv, http.MethodPost, "/a2a/respond", `{"sessionId": "sess-1"}`)
	body := rec.Body.String()
	assert.Contains(t, body, "Unknown response type")
	assert.Contains(t, body, `"state":"failed"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))

	assert.Empty(t, store.List())
}

func TestHandleRespond_PreviewApproval(t *testing.T) {
	srv, store := newTestServer(t, scenario.FullPlanMode)

	rec := do(t, srv, http.MethodPost, "/a2a/respond", `{"sessionId": "sess-1", "planId": "p1", "approved": false}`)
	body := rec.Body.String()
	assert.Contains(t, body, "Analysis cancelled")
	assert.NotContains(t, body, "file_created")

	sess, ok := store.Get("sess-1")
	require.True(t, ok)
	assert.Equal(t, session.PhaseCompleted, sess.CurrentPhase)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, scenario.MultiClarification)

	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got["status"])
	assert.Equal(t, AgentID, got["agent_id"])
	assert.Equal(t, scenario.MultiClarification, got["scenario"])
}

func TestReset_Idempotent(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)
	do(t, srv, http.MethodPost, "/", messageBodyJSON)

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodPost, "/reset", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, true, got["ok"])
		assert.Equal(t, "State reset", got["message"])

		sessions := do(t, srv, http.MethodGet, "/sessions", "")
		assert.JSONEq(t, "[]", sessions.Body.String())
	}
}

func TestSessions_ListsActiveSessions(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)
	do(t, srv, http.MethodPost, "/", messageBodyJSON)

	rec := do(t, srv, http.MethodGet, "/sessions", "")
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "sess-1", got[0]["session_id"])
	assert.Equal(t, "wf-1", got[0]["workflow_id"])
	assert.Equal(t, "completed", got[0]["current_phase"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, scenario.DirectExecution)
	do(t, srv, http.MethodPost, "/", messageBodyJSON)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "testagent_frames_emitted_total")
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy(true))
	assert.True(t, truthy("yes"))
	assert.True(t, truthy(float64(1)))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(float64(0)))
	assert.False(t, truthy(nil))
	assert.False(t, truthy(map[string]any{}))
}
