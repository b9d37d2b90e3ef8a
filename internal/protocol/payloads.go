package protocol

// Type discriminators for structured data payloads.
const (
	TypeClarificationNeeded = "clarification_needed"
	TypeDiscoveryResult     = "discovery_result"
	TypeSelectionRequired   = "selection_required"
	TypePreviewReady        = "preview_ready"
	TypeFileCreated         = "file_created"
)

// QuestionOption is one selectable answer to a clarification question.
type QuestionOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Question is one clarification question posed to the caller.
type Question struct {
	QuestionID   string           `json:"questionId"`
	QuestionType string           `json:"questionType"`
	Question     string           `json:"question"`
	Header       string           `json:"header"`
	Options      []QuestionOption `json:"options"`
}

// ClarificationNeeded asks the caller to answer one or more questions
// before the workflow can continue.
type ClarificationNeeded struct {
	Type            string     `json:"type"`
	WorkflowID      string     `json:"workflowId"`
	ClarificationID string     `json:"clarificationId"`
	Questions       []Question `json:"questions"`
	Message         string     `json:"message"`
	TimeoutMs       int        `json:"timeoutMs,omitempty"`
}

// DiscoveryItem is one discovered resource presented to the caller.
type DiscoveryItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"memberCount"`
}

// DiscoveryResult reports what the agent found based on earlier answers.
type DiscoveryResult struct {
	Type          string          `json:"type"`
	WorkflowID    string          `json:"workflowId"`
	DiscoveryID   string          `json:"discoveryId"`
	DiscoveryType string          `json:"discoveryType"`
	Items         []DiscoveryItem `json:"items"`
	Message       string          `json:"message"`
}

// SelectionRequired asks the caller to pick among discovered items.
type SelectionRequired struct {
	Type        string          `json:"type"`
	WorkflowID  string          `json:"workflowId"`
	SelectionID string          `json:"selectionId"`
	Items       []DiscoveryItem `json:"items"`
	MinSelect   int             `json:"minSelect"`
	MaxSelect   int             `json:"maxSelect"`
	Message     string          `json:"message"`
}

// PlanStep is one step of a proposed execution plan.
type PlanStep struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// PreviewReady presents the execution plan for approval.
type PreviewReady struct {
	Type             string     `json:"type"`
	WorkflowID       string     `json:"workflowId"`
	PlanID           string     `json:"planId"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary"`
	Steps            []PlanStep `json:"steps"`
	SearchKeywords   []string   `json:"searchKeywords"`
	Hashtags         []string   `json:"hashtags"`
	RequiresApproval bool       `json:"requiresApproval"`
	Message          string     `json:"message"`
}

// FileCreated reports an output artifact produced during execution.
type FileCreated struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Format  string `json:"format"`
	Size    int    `json:"size"`
	Summary string `json:"summary"`
}
