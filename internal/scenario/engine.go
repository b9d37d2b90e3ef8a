// Package scenario implements the scripted phase state machine that drives
// the test agent. A configured scenario maps each inbound request to a
// handler that emits protocol frames over a channel, pacing them with a
// configurable delay and mutating session phase as it goes. A handler that
// emits an input-required frame returns immediately after; the session can
// only advance through a subsequent respond call.
package scenario

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/pixell-labs/workflow-testagent/internal/protocol"
	"github.com/pixell-labs/workflow-testagent/internal/session"
)

// Scenario names selectable through configuration.
const (
	FullPlanMode       = "full_plan_mode"
	DirectExecution    = "direct_execution"
	ErrorMidExecution  = "error_mid_execution"
	MultiClarification = "multi_clarification"
	TimeoutScenario    = "timeout_scenario"
)

// timeoutWait is how long the timeout scenario stalls after its first
// frame. The client is expected to give up long before this elapses.
const timeoutWait = 10 * time.Minute

// MessageRequest is a decoded message/stream call.
type MessageRequest struct {
	SessionID  string
	WorkflowID string
	Text       string
	PlanMode   bool
}

// RespondRequest is a decoded respond call. Exactly one of the three answer
// shapes (clarification, selection, plan approval) should be present;
// absent fields stay nil so presence can be distinguished from emptiness.
type RespondRequest struct {
	SessionID       string         `json:"sessionId"`
	ClarificationID string         `json:"clarificationId"`
	Answers         map[string]any `json:"answers"`
	SelectionID     string         `json:"selectionId"`
	SelectedIDs     []string       `json:"selectedIds"`
	PlanID          string         `json:"planId"`
	Approved        *bool          `json:"approved"`
}

// Engine runs the configured scenario against the session store. It is
// stateless between calls; sessions carry all durable state.
type Engine struct {
	store    *session.Store
	scenario string
	delay    time.Duration
	stall    time.Duration
	log      logr.Logger
	newID    func() string
}

// NewEngine creates an engine for the named scenario. Unrecognized names
// fall back to direct execution at dispatch time.
func NewEngine(store *session.Store, scenarioName string, delay time.Duration, log logr.Logger) *Engine {
	return &Engine{
		store:    store,
		scenario: scenarioName,
		delay:    delay,
		stall:    timeoutWait,
		log:      log,
		newID:    uuid.NewString,
	}
}

// Scenario returns the configured scenario name.
func (e *Engine) Scenario() string {
	return e.scenario
}

// handlerPair binds a scenario name to its two entry points: the initial
// message handler and, where the scenario suspends on clarification, the
// handler that resumes it with answers.
type handlerPair struct {
	run           func(*Engine, *stream, *MessageRequest)
	resume        func(*Engine, *stream, string, string, map[string]any)
	needsPlanMode bool
}

var scenarios = map[string]handlerPair{
	FullPlanMode:       {run: (*Engine).runFullPlanMode, resume: (*Engine).resumeFullPlanMode, needsPlanMode: true},
	DirectExecution:    {run: (*Engine).runDirectExecution},
	ErrorMidExecution:  {run: (*Engine).runErrorMidExecution},
	MultiClarification: {run: (*Engine).runMultiClarification, resume: (*Engine).resumeMultiClarification},
	TimeoutScenario:    {run: (*Engine).runTimeoutScenario},
}

// HandleMessage runs the configured scenario's message handler and returns
// the frame channel. The channel closes when the handler returns or ctx is
// cancelled; the caller appends the stream sentinel itself.
func (e *Engine) HandleMessage(ctx context.Context, req *MessageRequest) <-chan protocol.Result {
	run := e.messageHandler(req.PlanMode)
	ch := make(chan protocol.Result)
	st := &stream{ctx: ctx, ch: ch, delay: e.delay}

	e.log.Info("handling message", "scenario", e.scenario, "session", req.SessionID, "workflow", req.WorkflowID, "planMode", req.PlanMode)

	go func() {
		defer close(ch)
		run(e, st, req)
	}()
	return ch
}

// messageHandler resolves the entry point for a message call. Scenarios
// without a plan-mode requirement run unconditionally; full plan mode runs
// only when plan mode was requested; everything else, including unknown
// scenario names, falls back to direct execution.
func (e *Engine) messageHandler(planMode bool) func(*Engine, *stream, *MessageRequest) {
	entry, ok := scenarios[e.scenario]
	if !ok || entry.run == nil {
		return (*Engine).runDirectExecution
	}
	if entry.needsPlanMode && !planMode {
		return (*Engine).runDirectExecution
	}
	return entry.run
}

// HandleRespond routes a resumption call by answer shape. An unrecognized
// shape yields a single failed frame and leaves session state untouched.
func (e *Engine) HandleRespond(ctx context.Context, req *RespondRequest) <-chan protocol.Result {
	ch := make(chan protocol.Result)
	st := &stream{ctx: ctx, ch: ch, delay: e.delay}

	e.log.Info("handling respond", "scenario", e.scenario, "session", req.SessionID,
		"clarification", req.ClarificationID, "selection", req.SelectionID, "plan", req.PlanID)

	go func() {
		defer close(ch)
		switch {
		case req.ClarificationID != "" && req.Answers != nil:
			e.resumeClarification(st, req.SessionID, req.Answers)
		case req.SelectionID != "" && req.SelectedIDs != nil:
			e.runSelectionToPreview(st, req.SessionID, req.SelectedIDs)
		case req.PlanID != "" && req.Approved != nil:
			e.runPreviewToCompletion(st, req.SessionID, *req.Approved)
		default:
			st.emit(protocol.FailedStatus(req.SessionID, "Unknown response type"))
		}
	}()
	return ch
}

// resumeClarification continues a session suspended on clarification. The
// configured scenario's resume handler runs if it has one; otherwise the
// answers feed the full plan mode continuation.
func (e *Engine) resumeClarification(st *stream, sessionID string, answers map[string]any) {
	workflowID := e.workflowFor(sessionID)
	if entry, ok := scenarios[e.scenario]; ok && entry.resume != nil {
		entry.resume(e, st, sessionID, workflowID, answers)
		return
	}
	e.resumeFullPlanMode(st, sessionID, workflowID, answers)
}

// workflowFor resolves the workflow id for a respond call: the stored
// session's id when the session is known, a fresh one otherwise.
func (e *Engine) workflowFor(sessionID string) string {
	if sess, ok := e.store.Get(sessionID); ok {
		return sess.WorkflowID
	}
	return e.newID()
}

// stream pushes frames to the transport with paced delays. Every send
// races ctx cancellation so a disconnected client releases the handler
// goroutine promptly.
type stream struct {
	ctx   context.Context
	ch    chan<- protocol.Result
	delay time.Duration
}

// emit sends one frame. It reports false when the context is done, which
// handlers treat as an instruction to abandon the run.
func (s *stream) emit(r protocol.Result) bool {
	select {
	case s.ch <- r:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// pause waits the configured inter-frame delay.
func (s *stream) pause() bool {
	return s.wait(s.delay)
}

func (s *stream) wait(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}
