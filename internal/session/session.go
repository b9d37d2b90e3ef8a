// Package session holds per-conversation state for the test agent.
// Sessions live in memory only; the harness wipes them between runs
// through the reset endpoint.
package session

import "time"

// Phase is the discrete stage of a session's scripted workflow.
type Phase string

const (
	PhaseInitial       Phase = "initial"
	PhaseClarification Phase = "clarification"
	PhaseDiscovery     Phase = "discovery"
	PhaseSelection     Phase = "selection"
	PhasePreview       Phase = "preview"
	PhaseExecuting     Phase = "executing"
	PhaseCompleted     Phase = "completed"
	// PhaseError is absorbing: a session that enters it is never resumed.
	PhaseError Phase = "error"
)

// Session tracks one logical conversation with the agent. Phase is stored
// rather than derived because sessions resume across independent HTTP
// requests; it is the only durable memory of where the conversation is.
type Session struct {
	ID                     string
	WorkflowID             string
	CurrentPhase           Phase
	ClarificationResponses map[string]any
	SelectionResponses     map[string][]string
	PreviewResponses       map[string]bool
	CreatedAt              time.Time
}

// RecordAnswers merges clarification answers into the session. Round count
// for multi-round clarification is inferred from the accumulated size.
func (s *Session) RecordAnswers(answers map[string]any) {
	for k, v := range answers {
		s.ClarificationResponses[k] = v
	}
}

// Summary is the diagnostic view returned by the sessions endpoint.
type Summary struct {
	SessionID    string  `json:"session_id"`
	WorkflowID   string  `json:"workflow_id"`
	CurrentPhase Phase   `json:"current_phase"`
	CreatedAt    float64 `json:"created_at"`
}
