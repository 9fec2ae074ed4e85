package knowledge

import (
	"context"
	"testing"
)

func TestInMemorySearchRanksByOverlap(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	entries := []Entry{
		{Summary: "Customer cannot connect to the internet over Wi-Fi", Resolution: "Clear the app cache and rejoin the network"},
		{Summary: "Refund request for duplicate charge", Resolution: "Escalated to billing for manual refund"},
		{Summary: "Password reset loop on login", Resolution: "Force reset via admin console"},
	}
	for _, e := range entries {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.Search(ctx, "internet connectivity problem with Wi-Fi", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(Search()) = %d, want 1", len(got))
	}
	if got[0].Resolution != "Clear the app cache and rejoin the network" {
		t.Fatalf("top match = %q, want connectivity entry", got[0].Resolution)
	}
	if got[0].ID == "" {
		t.Fatalf("Save() should assign an ID")
	}
}

func TestInMemorySearchEmptyQuery(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	if err := s.Save(ctx, Entry{Summary: "anything", Resolution: "anything"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Search(ctx, "", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(Search()) = %d, want 0 for empty query", len(got))
	}

	got, err = s.Search(ctx, "completely unrelated topic", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(Search()) = %d, want 0 for zero limit", len(got))
	}
}
