package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fmeurer/caseflow/internal/protocol"
	"github.com/fmeurer/caseflow/internal/registry"
)

const (
	wsReadLimit    = 1 << 20
	wsPongWait     = 120 * time.Second
	wsPingInterval = 45 * time.Second

	// writeDeadline bounds each websocket write.
	writeDeadline = 10 * time.Second
)

// handleConversationWS attaches a websocket client to an existing
// conversation. Each inbound customer message runs one full turn and the
// result is written back on the same connection.
func (s *Server) handleConversationWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("conversation_id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation_id", "conversation_id query parameter is required")
		return
	}
	if _, err := s.conversations.Get(id); err != nil {
		respondError(w, http.StatusNotFound, "conversation_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	log := s.log.WithField("conversation_id", id)
	log.Info("websocket client attached")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket closed unexpectedly")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		s.metrics.WSMessages.WithLabelValues("inbound").Inc()

		msg, err := protocol.ParseClientMessage(raw)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: id,
				Code:           "invalid_message",
				Detail:         err.Error(),
			})
			continue
		}

		result, err := s.conversations.RunTurn(r.Context(), id, s.orchestrator, msg.Text)
		if err != nil {
			// The session was deleted or expired under us.
			s.writeWS(conn, protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: id,
				Code:           "conversation_not_found",
				Detail:         err.Error(),
			})
			if errors.Is(err, registry.ErrNotFound) {
				return
			}
			continue
		}

		s.writeWS(conn, protocol.TurnResultEvent{
			Type:           protocol.TypeTurnResult,
			ConversationID: id,
			Result:         result,
		})
	}
}

func (s *Server) writeWS(conn *websocket.Conn, v any) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(v); err != nil {
		s.log.WithError(err).Debug("websocket write failed")
		return
	}
	s.metrics.WSMessages.WithLabelValues("outbound").Inc()
}
