package server

import (
	"github.com/google/uuid"

	"github.com/pixell-labs/workflow-testagent/internal/scenario"
)

// messageBody is the inbound JSON-RPC envelope of the message endpoint.
// Parts stay loosely typed because callers send heterogeneous part shapes;
// only the first text-bearing part matters here.
type messageBody struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      any    `json:"id"`
	Params  struct {
		SessionID  string `json:"sessionId"`
		WorkflowID string `json:"workflowId"`
		Message    struct {
			Parts    []map[string]any `json:"parts"`
			Metadata map[string]any   `json:"metadata"`
		} `json:"message"`
		Metadata map[string]any `json:"metadata"`
	} `json:"params"`
}

// toRequest resolves the engine request: generated ids for anything the
// caller omitted, text from the first part carrying a text field, and the
// plan-mode flag read from both metadata locations (either truthy enables).
func (b *messageBody) toRequest() *scenario.MessageRequest {
	sessionID := b.Params.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	workflowID := b.Params.WorkflowID
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	var text string
	for _, part := range b.Params.Message.Parts {
		if v, ok := part["text"]; ok {
			text, _ = v.(string)
			break
		}
	}

	planMode := truthy(b.Params.Message.Metadata["plan_mode_enabled"]) ||
		truthy(b.Params.Metadata["planMode"])

	return &scenario.MessageRequest{
		SessionID:  sessionID,
		WorkflowID: workflowID,
		Text:       text,
		PlanMode:   planMode,
	}
}

// truthy mirrors the loose flag semantics of the protocol contract: bools
// by value, numbers by non-zero, strings and containers by non-emptiness.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	default:
		return true
	}
}
