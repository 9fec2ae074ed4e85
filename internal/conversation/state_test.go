package conversation

import (
	"strings"
	"testing"
)

func TestStateHistoryAppendOrder(t *testing.T) {
	s := NewState()
	if s.Status != StatusContinue {
		t.Fatalf("initial Status = %q, want %q", s.Status, StatusContinue)
	}

	s.AppendCustomer("first")
	s.AppendSystem("reply one")
	s.AppendCustomer("second")

	if len(s.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(s.History))
	}
	if s.History[0].Speaker != SpeakerCustomer || s.History[1].Speaker != SpeakerSystem {
		t.Fatalf("unexpected speaker order: %+v", s.History)
	}

	formatted := s.FormatHistory()
	firstIdx := strings.Index(formatted, "Customer: first")
	replyIdx := strings.Index(formatted, "Support: reply one")
	secondIdx := strings.Index(formatted, "Customer: second")
	if firstIdx < 0 || replyIdx < 0 || secondIdx < 0 {
		t.Fatalf("FormatHistory() missing entries: %q", formatted)
	}
	if !(firstIdx < replyIdx && replyIdx < secondIdx) {
		t.Fatalf("FormatHistory() order wrong: %q", formatted)
	}
}

func TestStateBeginTurnClearsOnlyTurnFields(t *testing.T) {
	s := NewState()
	s.AppendCustomer("hello")
	s.commitTurn("sum", "act", "res", "route", "eta", StatusResolved)

	s.beginTurn()
	if s.Summary != "" || s.Actions != "" || s.Resolution != "" || s.Routing != "" || s.ETA != "" {
		t.Fatalf("beginTurn() left per-turn fields set: %+v", s)
	}
	if s.Status != StatusResolved {
		t.Fatalf("beginTurn() changed Status = %q, want %q preserved", s.Status, StatusResolved)
	}
	if len(s.History) != 1 {
		t.Fatalf("beginTurn() touched history, len = %d", len(s.History))
	}
}

func TestKnownStatus(t *testing.T) {
	for _, status := range []Status{StatusContinue, StatusResolved, StatusEscalate, StatusError} {
		if !KnownStatus(status) {
			t.Fatalf("KnownStatus(%q) = false, want true", status)
		}
	}
	if KnownStatus("reslved") {
		t.Fatalf("KnownStatus(reslved) = true, want false")
	}
}
