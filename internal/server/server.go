// Package server exposes the test agent over HTTP: two SSE streaming
// endpoints for the workflow protocol and a handful of plain JSON
// endpoints for the harness (health, reset, session listing, metrics).
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixell-labs/workflow-testagent/internal/protocol"
	"github.com/pixell-labs/workflow-testagent/internal/scenario"
	"github.com/pixell-labs/workflow-testagent/internal/session"
)

// AgentID identifies this agent in the health endpoint.
const AgentID = "test-workflow-agent"

// Server routes harness requests to the scenario engine and streams the
// resulting frames back over SSE.
type Server struct {
	store  *session.Store
	engine *scenario.Engine
	log    logr.Logger
	router *mux.Router

	requests *prometheus.CounterVec
	frames   prometheus.Counter
}

// New creates a server around the given store and engine. Each server owns
// a private metrics registry so tests can construct servers freely.
func New(store *session.Store, engine *scenario.Engine, log logr.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		store:  store,
		engine: engine,
		log:    log,
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "testagent_requests_total",
			Help: "Requests handled, by endpoint.",
		}, []string{"endpoint"}),
		frames: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "testagent_frames_emitted_total",
			Help: "Protocol frames written to streaming responses.",
		}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleMessage).Methods(http.MethodPost)
	r.HandleFunc("/a2a/respond", s.handleRespond).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/sessions", s.handleSessions).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleMessage is the main A2A message handler: it decodes the JSON-RPC
// request, resolves session and plan-mode flag, and streams the configured
// scenario's frames.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues("message").Inc()

	var body messageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.log.Error(err, "failed to decode message body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	requestID := body.ID
	if requestID == nil || requestID == "" {
		requestID = uuid.NewString()
	}
	req := body.toRequest()

	s.log.V(1).Info("message received", "method", body.Method, "session", req.SessionID, "workflow", req.WorkflowID)

	frames := s.engine.HandleMessage(r.Context(), req)
	s.streamFrames(w, requestID, frames)
}

// handleRespond handles clarification, selection, and preview answers. The
// respond path always correlates frames under a fresh request id.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues("respond").Inc()

	var req scenario.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Error(err, "failed to decode respond body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	frames := s.engine.HandleRespond(r.Context(), &req)
	s.streamFrames(w, uuid.NewString(), frames)
}

// streamFrames writes each frame as it arrives and terminates the logical
// stream with the sentinel, unconditionally, on every dispatch path.
func (s *Server) streamFrames(w http.ResponseWriter, requestID any, frames <-chan protocol.Result) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	for res := range frames {
		frame, err := protocol.Frame(requestID, res)
		if err != nil {
			s.log.Error(err, "dropping unencodable frame", "session", res.SessionID)
			continue
		}
		if _, err := io.WriteString(w, frame); err != nil {
			s.log.V(1).Info("client went away mid-stream", "session", res.SessionID)
			// Keep draining: the engine stops on its own when the request
			// context is cancelled.
			continue
		}
		s.frames.Inc()
		if canFlush {
			flusher.Flush()
		}
	}

	io.WriteString(w, protocol.Sentinel)
	if canFlush {
		flusher.Flush()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues("health").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"agent_id": AgentID,
		"scenario": s.engine.Scenario(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues("reset").Inc()
	s.store.Reset()
	s.log.Info("session state reset")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "State reset"})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	s.requests.WithLabelValues("sessions").Inc()
	writeJSON(w, http.StatusOK, s.store.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
