package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fmeurer/caseflow/internal/routing"
)

func testRoutes() *routing.Table {
	return routing.NewTable(map[string]string{
		"billing": "Billing Team",
		"network": "Network Operations",
	})
}

func TestMockInvokerSummarize(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	out, err := m.Invoke(context.Background(), StageSummarize, "Customer: my internet keeps dropping")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(out, "my internet keeps dropping") {
		t.Fatalf("summary = %q, want issue echoed", out)
	}
}

func TestMockInvokerDispatchIsFenced(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	prompt := "Suggested Resolution:\nRestart the router.\n\nRouting Info:\nNo escalation needed"
	out, err := m.Invoke(context.Background(), StageDispatch, prompt)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.HasPrefix(out, "```json") {
		t.Fatalf("dispatch output = %q, want fenced json", out)
	}
	if !strings.Contains(out, `"status": "continue"`) {
		t.Fatalf("dispatch output = %q, want continue status", out)
	}
}

func TestMockInvokerDispatchEscalates(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	prompt := "Suggested Resolution:\nHand off to specialists.\n\nRouting Info:\nBilling Team"
	out, err := m.Invoke(context.Background(), StageDispatch, prompt)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(out, `"status": "escalate"`) {
		t.Fatalf("dispatch output = %q, want escalate status", out)
	}
}

func TestMockInvokerRouteEscalation(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	out, err := m.Invoke(context.Background(), StageRouteEscalation, "Escalate to billing team for refund review")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out != "Billing Team" {
		t.Fatalf("team = %q, want Billing Team", out)
	}
}

func TestMockInvokerFailOn(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	boom := errors.New("boom")
	m.FailOn(StageFindResolution, boom)

	if _, err := m.Invoke(context.Background(), StageFindResolution, "x"); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	// Other stages are unaffected.
	if _, err := m.Invoke(context.Background(), StageSummarize, "Customer: hi"); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
}

func TestMockInvokerHonorsCancelledContext(t *testing.T) {
	m := NewMockInvoker(testRoutes())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Invoke(ctx, StageSummarize, "Customer: hi"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
