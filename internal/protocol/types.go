// Package protocol defines the wire types streamed to the workflow
// orchestrator: JSON-RPC result payloads carrying either a task status
// update or a final conversational message, plus the structured data
// payloads embedded in input-required frames.
package protocol

// Frame payload kinds.
const (
	KindStatusUpdate = "status-update"
	KindMessage      = "message"
)

// TaskState represents the agent-side task state carried in a status update.
type TaskState string

const (
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateFailed        TaskState = "failed"
)

// RoleAssistant is the only role the agent emits.
const RoleAssistant = "assistant"

// Part is one element of a message's parts array. A part carries either
// free text or a structured data payload, never both.
type Part struct {
	Text string `json:"text,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Message is a conversational payload nested in a status update.
type Message struct {
	Role     string         `json:"role"`
	Parts    []Part         `json:"parts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Status is the state block of a status-update frame.
type Status struct {
	State   TaskState `json:"state"`
	Message *Message  `json:"message,omitempty"`
}

// Result is the JSON-RPC result payload of one stream frame. Status is set
// for status-update frames; Parts is set for final message frames.
type Result struct {
	Kind      string  `json:"kind"`
	SessionID string  `json:"sessionId"`
	Status    *Status `json:"status,omitempty"`
	Parts     []Part  `json:"parts,omitempty"`
}

// WorkingStatus builds a working-state status update with a text part.
func WorkingStatus(sessionID, text string, metadata map[string]any) Result {
	return Result{
		Kind:      KindStatusUpdate,
		SessionID: sessionID,
		Status: &Status{
			State: TaskStateWorking,
			Message: &Message{
				Role:     RoleAssistant,
				Parts:    []Part{{Text: text}},
				Metadata: metadata,
			},
		},
	}
}

// WorkingData builds a working-state status update carrying a structured
// data payload, such as a file_created notification.
func WorkingData(sessionID string, data any) Result {
	return Result{
		Kind:      KindStatusUpdate,
		SessionID: sessionID,
		Status: &Status{
			State: TaskStateWorking,
			Message: &Message{
				Role:  RoleAssistant,
				Parts: []Part{{Data: data}},
			},
		},
	}
}

// InputRequired builds an input-required status update carrying a structured
// data payload that asks the caller for clarification, selection, or
// plan approval.
func InputRequired(sessionID string, data any) Result {
	return Result{
		Kind:      KindStatusUpdate,
		SessionID: sessionID,
		Status: &Status{
			State: TaskStateInputRequired,
			Message: &Message{
				Role:  RoleAssistant,
				Parts: []Part{{Data: data}},
			},
		},
	}
}

// FailedStatus builds a terminal failed-state status update.
func FailedStatus(sessionID, text string) Result {
	return Result{
		Kind:      KindStatusUpdate,
		SessionID: sessionID,
		Status: &Status{
			State: TaskStateFailed,
			Message: &Message{
				Role:  RoleAssistant,
				Parts: []Part{{Text: text}},
			},
		},
	}
}

// TextMessage builds a final message-kind frame. No further frames are
// expected for the session after one of these.
func TextMessage(sessionID, text string) Result {
	return Result{
		Kind:      KindMessage,
		SessionID: sessionID,
		Parts:     []Part{{Text: text}},
	}
}
