package scenario

import (
	"fmt"

	"github.com/pixell-labs/workflow-testagent/internal/protocol"
	"github.com/pixell-labs/workflow-testagent/internal/session"
)

// runFullPlanMode starts the full workflow: a working frame, then the first
// clarification round. The handler suspends there; discovery and beyond run
// from the respond path.
func (e *Engine) runFullPlanMode(st *stream, req *MessageRequest) {
	sess := e.store.GetOrCreate(req.SessionID, req.WorkflowID)

	if !st.emit(protocol.WorkingStatus(req.SessionID, "Analyzing your request...", map[string]any{"event_type": "analyzing"})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseClarification
	st.emit(protocol.InputRequired(req.SessionID, protocol.ClarificationNeeded{
		Type:            protocol.TypeClarificationNeeded,
		WorkflowID:      req.WorkflowID,
		ClarificationID: e.newID(),
		Questions: []protocol.Question{
			{
				QuestionID:   "topic",
				QuestionType: "single_choice",
				Question:     "What topic are you interested in?",
				Header:       "Topic",
				Options: []protocol.QuestionOption{
					{ID: "tech", Label: "Technology", Description: "Tech news and discussions"},
					{ID: "science", Label: "Science", Description: "Scientific discoveries"},
					{ID: "gaming", Label: "Gaming", Description: "Video games and esports"},
				},
			},
			{
				QuestionID:   "depth",
				QuestionType: "single_choice",
				Question:     "How deep should the analysis be?",
				Header:       "Depth",
				Options: []protocol.QuestionOption{
					{ID: "quick", Label: "Quick scan", Description: "Surface-level analysis"},
					{ID: "detailed", Label: "Detailed", Description: "In-depth analysis"},
				},
			},
		},
		Message:   "I need a bit more information to proceed.",
		TimeoutMs: 300000,
	}))
}

// resumeFullPlanMode continues after clarification answers: discovery
// results synthesized from the topic answer, then the selection prompt.
// The handler suspends on selection.
func (e *Engine) resumeFullPlanMode(st *stream, sessionID, workflowID string, answers map[string]any) {
	sess := e.store.GetOrCreate(sessionID, workflowID)
	sess.RecordAnswers(answers)

	topic := "tech"
	if v, ok := answers["topic"].(string); ok && v != "" {
		topic = v
	}

	if !st.emit(protocol.WorkingStatus(sessionID, fmt.Sprintf("Discovering %s-related subreddits...", topic), map[string]any{"event_type": "discovering"})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseDiscovery
	items := []protocol.DiscoveryItem{
		{ID: "sub-1", Name: fmt.Sprintf("r/%s", topic), Description: fmt.Sprintf("Main %s subreddit", topic), MemberCount: 15000000},
		{ID: "sub-2", Name: fmt.Sprintf("r/%snews", topic), Description: fmt.Sprintf("Latest %s news", topic), MemberCount: 2500000},
		{ID: "sub-3", Name: fmt.Sprintf("r/ask%s", topic), Description: fmt.Sprintf("Questions about %s", topic), MemberCount: 1800000},
	}

	if !st.emit(protocol.InputRequired(sessionID, protocol.DiscoveryResult{
		Type:          protocol.TypeDiscoveryResult,
		WorkflowID:    workflowID,
		DiscoveryID:   e.newID(),
		DiscoveryType: "subreddits",
		Items:         items,
		Message:       fmt.Sprintf("I found %d subreddits related to %s.", len(items), topic),
	})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseSelection
	st.emit(protocol.InputRequired(sessionID, protocol.SelectionRequired{
		Type:        protocol.TypeSelectionRequired,
		WorkflowID:  workflowID,
		SelectionID: e.newID(),
		Items:       items,
		MinSelect:   1,
		MaxSelect:   3,
		Message:     "Please select which subreddits to analyze.",
	}))
}

// runSelectionToPreview presents the fixed three-step plan for approval
// and suspends on preview.
func (e *Engine) runSelectionToPreview(st *stream, sessionID string, selectedIDs []string) {
	workflowID := e.workflowFor(sessionID)
	sess := e.store.GetOrCreate(sessionID, workflowID)

	sess.CurrentPhase = session.PhasePreview
	st.emit(protocol.InputRequired(sessionID, protocol.PreviewReady{
		Type:       protocol.TypePreviewReady,
		WorkflowID: workflowID,
		PlanID:     e.newID(),
		Title:      "Analysis Plan",
		Summary:    fmt.Sprintf("I will analyze %d subreddits for trending topics and sentiment.", len(selectedIDs)),
		Steps: []protocol.PlanStep{
			{ID: "step-1", Description: "Fetch recent posts", Status: "pending"},
			{ID: "step-2", Description: "Analyze sentiment", Status: "pending"},
			{ID: "step-3", Description: "Generate report", Status: "pending"},
		},
		SearchKeywords:   []string{"trending", "popular", "discussion"},
		Hashtags:         []string{"#analysis", "#reddit"},
		RequiresApproval: true,
		Message:          "Here's my analysis plan. Ready to proceed?",
	}))
}

// runPreviewToCompletion finishes the workflow after approval. Rejection
// completes immediately with a cancellation message and runs nothing.
func (e *Engine) runPreviewToCompletion(st *stream, sessionID string, approved bool) {
	workflowID := e.workflowFor(sessionID)
	sess := e.store.GetOrCreate(sessionID, workflowID)

	if !approved {
		sess.CurrentPhase = session.PhaseCompleted
		st.emit(protocol.TextMessage(sessionID, "Analysis cancelled. Let me know if you'd like to try something different."))
		return
	}

	sess.CurrentPhase = session.PhaseExecuting
	steps := []string{"Fetching posts...", "Analyzing sentiment...", "Generating report..."}
	for i, text := range steps {
		if !st.emit(protocol.WorkingStatus(sessionID, text, map[string]any{"event_type": "executing", "step": i + 1, "total": len(steps)})) {
			return
		}
		if !st.pause() {
			return
		}
	}

	if !st.emit(protocol.WorkingData(sessionID, protocol.FileCreated{
		Type:    protocol.TypeFileCreated,
		Path:    "/reports/analysis-report.html",
		Name:    "analysis-report.html",
		Format:  "html",
		Size:    45678,
		Summary: "Comprehensive analysis report with sentiment breakdown",
	})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseCompleted
	st.emit(protocol.TextMessage(sessionID, "Analysis complete! I analyzed the selected subreddits and found:\n\n"+
		"- **Overall Sentiment**: 67% positive\n"+
		"- **Trending Topics**: AI, Climate, Gaming\n"+
		"- **Peak Activity**: Weekday evenings\n\n"+
		"The detailed report has been saved."))
}

// runDirectExecution skips plan mode entirely: one working frame, then the
// completion message echoing the request text.
func (e *Engine) runDirectExecution(st *stream, req *MessageRequest) {
	sess := e.store.GetOrCreate(req.SessionID, req.WorkflowID)
	e.completeDirect(st, sess, req.Text)
}

func (e *Engine) completeDirect(st *stream, sess *session.Session, text string) {
	if !st.emit(protocol.WorkingStatus(sess.ID, "Processing your request...", map[string]any{"event_type": "processing"})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseCompleted
	st.emit(protocol.TextMessage(sess.ID,
		fmt.Sprintf("I received your message: '%s'\n\nThis is a direct execution response without plan mode.", text)))
}

// runErrorMidExecution fails partway through execution. The session lands
// in the absorbing error phase; no further frames follow.
func (e *Engine) runErrorMidExecution(st *stream, req *MessageRequest) {
	sess := e.store.GetOrCreate(req.SessionID, req.WorkflowID)

	if !st.emit(protocol.WorkingStatus(req.SessionID, "Starting execution...", map[string]any{"event_type": "executing"})) {
		return
	}
	if !st.pause() {
		return
	}

	if !st.emit(protocol.WorkingStatus(req.SessionID, "Processing step 1 of 3...", map[string]any{"event_type": "executing", "step": 1, "total": 3})) {
		return
	}
	if !st.pause() {
		return
	}

	sess.CurrentPhase = session.PhaseError
	st.emit(protocol.FailedStatus(req.SessionID, "Error: Connection to external API timed out after 30 seconds"))
}

// runMultiClarification opens the first of two clarification rounds.
func (e *Engine) runMultiClarification(st *stream, req *MessageRequest) {
	sess := e.store.GetOrCreate(req.SessionID, req.WorkflowID)

	sess.CurrentPhase = session.PhaseClarification
	st.emit(protocol.InputRequired(req.SessionID, protocol.ClarificationNeeded{
		Type:            protocol.TypeClarificationNeeded,
		WorkflowID:      req.WorkflowID,
		ClarificationID: e.newID(),
		Questions: []protocol.Question{
			{
				QuestionID:   "category",
				QuestionType: "single_choice",
				Question:     "What category are you interested in?",
				Header:       "Category",
				Options: []protocol.QuestionOption{
					{ID: "news", Label: "News", Description: "Current events"},
					{ID: "entertainment", Label: "Entertainment", Description: "Movies, TV, etc."},
				},
			},
		},
		Message: "First, let me understand your category preference.",
	}))
}

// resumeMultiClarification picks the round from the count of answers
// already recorded on the session, not from the stored phase: no answers
// yet means this respond call carries round one's answers, so round two
// runs; otherwise the scenario completes on the direct execution path.
func (e *Engine) resumeMultiClarification(st *stream, sessionID, workflowID string, answers map[string]any) {
	sess := e.store.GetOrCreate(sessionID, workflowID)

	if len(sess.ClarificationResponses) == 0 {
		e.runClarificationRound2(st, sess, answers)
		return
	}
	e.completeDirect(st, sess, "Final response")
}

// runClarificationRound2 acknowledges the first answer and asks the
// timeframe question.
func (e *Engine) runClarificationRound2(st *stream, sess *session.Session, answers map[string]any) {
	sess.RecordAnswers(answers)

	if !st.emit(protocol.WorkingStatus(sess.ID, "Great! I have one more question...", nil)) {
		return
	}
	if !st.pause() {
		return
	}

	st.emit(protocol.InputRequired(sess.ID, protocol.ClarificationNeeded{
		Type:            protocol.TypeClarificationNeeded,
		WorkflowID:      sess.WorkflowID,
		ClarificationID: e.newID(),
		Questions: []protocol.Question{
			{
				QuestionID:   "timeframe",
				QuestionType: "single_choice",
				Question:     "What timeframe should I analyze?",
				Header:       "Timeframe",
				Options: []protocol.QuestionOption{
					{ID: "day", Label: "Last 24 hours", Description: "Recent content"},
					{ID: "week", Label: "Last week", Description: "Weekly trends"},
					{ID: "month", Label: "Last month", Description: "Monthly overview"},
				},
			},
		},
		Message: "One more detail - what timeframe?",
	}))
}

// runTimeoutScenario emits one working frame and then stalls far past any
// reasonable client timeout. The wait is context-aware so a disconnect
// releases the goroutine.
func (e *Engine) runTimeoutScenario(st *stream, req *MessageRequest) {
	e.store.GetOrCreate(req.SessionID, req.WorkflowID)

	if !st.emit(protocol.WorkingStatus(req.SessionID, "Starting long operation...", nil)) {
		return
	}
	st.wait(e.stall)
}
