package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fmeurer/caseflow/internal/config"
	"github.com/fmeurer/caseflow/internal/conversation"
	"github.com/fmeurer/caseflow/internal/observability"
	"github.com/fmeurer/caseflow/internal/registry"
)

// Orchestrator runs one turn against a conversation state.
type Orchestrator interface {
	RunTurn(ctx context.Context, state *conversation.State, message string) conversation.TurnResult
}

type Server struct {
	cfg           config.Config
	conversations *registry.Registry
	orchestrator  Orchestrator
	metrics       *observability.Metrics
	log           *logrus.Logger
	upgrader      websocket.Upgrader
}

func New(cfg config.Config, conversations *registry.Registry, orchestrator Orchestrator, metrics *observability.Metrics, log *logrus.Logger) *Server {
	return &Server{
		cfg:           cfg,
		conversations: conversations,
		orchestrator:  orchestrator,
		metrics:       metrics,
		log:           log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same origin
				// unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/conversations", s.handleCreateConversation)
	r.Post("/v1/conversations/{id}/messages", s.handlePostMessage)
	r.Get("/v1/conversations/{id}", s.handleGetConversation)
	r.Delete("/v1/conversations/{id}", s.handleDeleteConversation)
	r.Get("/v1/conversations/ws", s.handleConversationWS)
	r.Post("/v1/predict", s.handlePredict)
	r.Get("/v1/perf/turns", s.handlePerfTurns)

	return r
}

type messageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type turnResponse struct {
	ConversationID string `json:"conversation_id"`
	conversation.TurnResult
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"engine_mode": s.cfg.EngineMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	store := "memory"
	if s.cfg.DatabaseURL != "" {
		store = "postgres"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"engine_mode":     s.cfg.EngineMode,
		"knowledge_store": store,
	})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	sess, created := s.conversations.GetOrCreate(req.ConversationID)
	if created {
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
		s.metrics.ActiveConversations.Set(float64(s.conversations.ActiveCount()))
	}

	result, err := s.conversations.RunTurn(r.Context(), sess.ID, s.orchestrator, req.Message)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, turnResponse{ConversationID: sess.ID, TurnResult: result})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "missing conversation id")
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	result, err := s.conversations.RunTurn(r.Context(), id, s.orchestrator, req.Message)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, turnResponse{ConversationID: id, TurnResult: result})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.conversations.SnapshotOf(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.conversations.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}
	s.metrics.SessionEvents.WithLabelValues("deleted").Inc()
	s.metrics.ActiveConversations.Set(float64(s.conversations.ActiveCount()))
	respondJSON(w, http.StatusOK, map[string]string{
		"status":          "deleted",
		"conversation_id": id,
	})
}

// handlePredict runs one turn against a throwaway state. No session is
// created and nothing is retained.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	result := s.orchestrator.RunTurn(r.Context(), conversation.NewState(), req.Message)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePerfTurns(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.TurnStageSnapshot())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
