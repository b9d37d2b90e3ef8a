package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Framing(t *testing.T) {
	frame, err := Frame("req-1", TextMessage("sess-1", "hello"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(frame, "data: "))
	assert.True(t, strings.HasSuffix(frame, "\n\n"))

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(frame, "data: "), "\n\n")), &env))
	assert.Equal(t, "2.0", env["jsonrpc"])
	assert.Equal(t, "req-1", env["id"])

	result := env["result"].(map[string]any)
	assert.Equal(t, KindMessage, result["kind"])
	assert.Equal(t, "sess-1", result["sessionId"])
}

func TestFrame_NumericRequestID(t *testing.T) {
	frame, err := Frame(float64(7), WorkingStatus("sess-1", "working on it", nil))
	require.NoError(t, err)
	assert.Contains(t, frame, `"id":7`)
}

func TestSentinel(t *testing.T) {
	assert.Equal(t, "data: [DONE]\n\n", Sentinel)
}

func TestWorkingStatus_OmitsEmptyMetadata(t *testing.T) {
	body, err := json.Marshal(WorkingStatus("sess-1", "thinking", nil))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "metadata")
	assert.Contains(t, string(body), `"state":"working"`)
	assert.Contains(t, string(body), `"role":"assistant"`)
}

func TestInputRequired_ClarificationShape(t *testing.T) {
	payload := ClarificationNeeded{
		Type:            TypeClarificationNeeded,
		WorkflowID:      "wf-1",
		ClarificationID: "cl-1",
		Questions: []Question{{
			QuestionID:   "topic",
			QuestionType: "single_choice",
			Question:     "What topic?",
			Header:       "Topic",
			Options:      []QuestionOption{{ID: "tech", Label: "Technology", Description: "Tech news"}},
		}},
		Message:   "Need more info.",
		TimeoutMs: 300000,
	}
	body, err := json.Marshal(InputRequired("sess-1", payload))
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `"state":"input-required"`)
	assert.Contains(t, s, `"type":"clarification_needed"`)
	assert.Contains(t, s, `"questionId":"topic"`)
	assert.Contains(t, s, `"timeoutMs":300000`)
}

func TestClarificationNeeded_TimeoutOmittedWhenUnset(t *testing.T) {
	body, err := json.Marshal(ClarificationNeeded{Type: TypeClarificationNeeded, WorkflowID: "wf-1"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "timeoutMs")
}

func TestFailedStatus(t *testing.T) {
	res := FailedStatus("sess-1", "boom")
	assert.Equal(t, KindStatusUpdate, res.Kind)
	require.NotNil(t, res.Status)
	assert.Equal(t, TaskStateFailed, res.Status.State)
	require.Len(t, res.Status.Message.Parts, 1)
	assert.Equal(t, "boom", res.Status.Message.Parts[0].Text)
}
