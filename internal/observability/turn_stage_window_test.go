package observability

import "testing"

func TestTurnStageWindowSnapshot(t *testing.T) {
	w := newTurnStageWindow(8)
	w.Observe("summarize", 500)
	w.Observe("summarize", 700)
	w.Observe("summarize", 900)
	w.ObserveIndicator("escalated")
	w.ObserveIndicator("escalated")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != "summarize" {
		t.Fatalf("Stage = %q, want %q", s.Stage, "summarize")
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 6000 {
		t.Fatalf("TargetP95MS = %.0f, want 6000 for summarize", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 {
		t.Fatalf("len(Indicators) = %d, want 1", len(snap.Indicators))
	}
	if snap.Indicators[0].Name != "escalated" {
		t.Fatalf("Indicators[0].Name = %q, want %q", snap.Indicators[0].Name, "escalated")
	}
	if snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators[0].Count = %d, want %d", snap.Indicators[0].Count, 2)
	}
}

func TestTurnStageWindowWraps(t *testing.T) {
	w := newTurnStageWindow(4)
	for i := 0; i < 10; i++ {
		w.Observe("dispatch", float64(100+i))
	}
	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	if snap.Stages[0].Samples != 4 {
		t.Fatalf("Samples = %d, want 4 after wrap", snap.Stages[0].Samples)
	}
	if snap.Stages[0].LastMS != 109 {
		t.Fatalf("LastMS = %.2f, want 109", snap.Stages[0].LastMS)
	}
}

func TestTurnStageWindowUnknownStageHasNoTarget(t *testing.T) {
	w := newTurnStageWindow(4)
	w.Observe("knowledge_search", 20)
	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	if snap.Stages[0].TargetP95MS != 0 {
		t.Fatalf("TargetP95MS = %.0f, want 0 for unbudgeted stage", snap.Stages[0].TargetP95MS)
	}
}
