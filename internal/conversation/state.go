// Package conversation implements the turn orchestration core: per-conversation
// state, the escalation policy, the tolerant dispatch-output parser, and the
// state machine that drives one customer message through the stage pipeline.
package conversation

import (
	"fmt"
	"strings"
)

// Speaker identifies who produced a history message.
type Speaker string

const (
	SpeakerCustomer Speaker = "customer"
	SpeakerSystem   Speaker = "system"
)

// Status is the overall conversation status after a turn.
type Status string

const (
	StatusContinue Status = "continue"
	StatusResolved Status = "resolved"
	StatusEscalate Status = "escalate"
	StatusError    Status = "error"
)

// KnownStatus reports whether s is one of the four enumerated statuses.
func KnownStatus(s Status) bool {
	switch s {
	case StatusContinue, StatusResolved, StatusEscalate, StatusError:
		return true
	default:
		return false
	}
}

// Message is one entry in the append-only conversation history.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// State holds everything the engine knows about one conversation: the
// append-only history, the most recent per-turn stage outputs, and the
// overall status. Per-turn fields are cleared when a turn starts and
// committed together when it completes; a failed turn leaves them empty.
type State struct {
	History    []Message `json:"history"`
	Summary    string    `json:"summary,omitempty"`
	Actions    string    `json:"actions,omitempty"`
	Resolution string    `json:"resolution,omitempty"`
	Routing    string    `json:"routing,omitempty"`
	ETA        string    `json:"eta,omitempty"`
	Status     Status    `json:"status"`
}

func NewState() *State {
	return &State{Status: StatusContinue}
}

func (s *State) AppendCustomer(text string) {
	s.History = append(s.History, Message{Speaker: SpeakerCustomer, Text: text})
}

func (s *State) AppendSystem(text string) {
	s.History = append(s.History, Message{Speaker: SpeakerSystem, Text: text})
}

// FormatHistory renders the full history for the summarize prompt.
// Summarization is always conversation-wide, never single-turn.
func (s *State) FormatHistory() string {
	var b strings.Builder
	for _, msg := range s.History {
		speaker := "Customer"
		if msg.Speaker == SpeakerSystem {
			speaker = "Support"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", speaker, msg.Text)
	}
	return b.String()
}

// beginTurn clears the per-turn fields so a failed turn can never surface a
// stale mix of a prior turn's results. Status is left alone until commit.
func (s *State) beginTurn() {
	s.Summary = ""
	s.Actions = ""
	s.Resolution = ""
	s.Routing = ""
	s.ETA = ""
}

// commitTurn persists a completed turn's outputs in one step.
func (s *State) commitTurn(summary, actions, resolution, routing, eta string, status Status) {
	s.Summary = summary
	s.Actions = actions
	s.Resolution = resolution
	s.Routing = routing
	s.ETA = eta
	s.Status = status
}
