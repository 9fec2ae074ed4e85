package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fmeurer/caseflow/internal/conversation"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeCustomerMessage MessageType = "customer_message"
	TypeTurnResult      MessageType = "turn_result"
	TypeErrorEvent      MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// CustomerMessage is an inbound chat message from the customer client.
type CustomerMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// TurnResultEvent delivers one completed turn to the client.
type TurnResultEvent struct {
	Type           MessageType             `json:"type"`
	ConversationID string                  `json:"conversation_id"`
	Result         conversation.TurnResult `json:"result"`
}

// ErrorEvent reports a protocol-level failure to the client.
type ErrorEvent struct {
	Type           MessageType `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Code           string      `json:"code"`
	Detail         string      `json:"detail,omitempty"`
}

func ParseClientMessage(raw []byte) (CustomerMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return CustomerMessage{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeCustomerMessage:
		var msg CustomerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return CustomerMessage{}, err
		}
		if strings.TrimSpace(msg.Text) == "" {
			return CustomerMessage{}, errors.New("invalid customer_message: empty text")
		}
		return msg, nil
	default:
		return CustomerMessage{}, ErrUnsupportedType
	}
}
