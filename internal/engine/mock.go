package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fmeurer/caseflow/internal/routing"
)

// MockInvoker produces deterministic stage output when no reasoning backend
// is configured. Replies are keyword-driven so the full pipeline, including
// escalation routing, can be exercised offline.
type MockInvoker struct {
	mu        sync.Mutex
	routes    *routing.Table
	failStage Stage
	failErr   error
}

func NewMockInvoker(routes *routing.Table) *MockInvoker {
	return &MockInvoker{routes: routes}
}

// FailOn makes the next invocations of the given stage return err. Used by
// tests to drive the orchestrator's failure path end to end.
func (m *MockInvoker) FailOn(stage Stage, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStage = stage
	m.failErr = err
}

func (m *MockInvoker) Invoke(ctx context.Context, stage Stage, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	m.mu.Lock()
	failStage, failErr := m.failStage, m.failErr
	m.mu.Unlock()
	if failErr != nil && failStage == stage {
		return "", failErr
	}

	lower := strings.ToLower(prompt)

	switch stage {
	case StageSummarize:
		issue := lastCustomerLine(prompt)
		if issue == "" {
			issue = "an unspecified issue"
		}
		return fmt.Sprintf("The customer reports: %s", issue), nil

	case StageExtractActions:
		var actions []string
		if strings.Contains(lower, "refund") || strings.Contains(lower, "charge") {
			actions = append(actions, "- Escalate to billing team for refund review")
		}
		if strings.Contains(lower, "password") || strings.Contains(lower, "locked") {
			actions = append(actions, "- Reset user password")
		}
		if strings.Contains(lower, "internet") || strings.Contains(lower, "wi-fi") || strings.Contains(lower, "connect") {
			actions = append(actions, "- Troubleshoot connectivity", "- Suggest clearing the app cache")
		}
		if len(actions) == 0 {
			actions = append(actions, "- Follow up with the customer in 48 hours")
		}
		return strings.Join(actions, "\n"), nil

	case StageFindResolution:
		if strings.Contains(lower, "relevant past resolutions:") {
			return "Apply the closest matching past resolution and confirm with the customer.", nil
		}
		return "Walk the customer through the standard troubleshooting steps for this issue.", nil

	case StageEstimateETA:
		if strings.Contains(lower, "escalate") {
			return "2-3 business days", nil
		}
		return "Under 4 hours", nil

	case StageRouteEscalation:
		if m.routes != nil {
			return m.routes.TeamFor(prompt), nil
		}
		return routing.DefaultTeam, nil

	case StageDispatch:
		status := "continue"
		if section(prompt, "Routing Info:") != "" && !strings.Contains(lower, "no escalation needed") {
			status = "escalate"
		} else if strings.Contains(lower, "thank") {
			status = "resolved"
		}
		reply := "Thanks for the details. " + section(prompt, "Suggested Resolution:")
		if eta := section(prompt, "Estimated Time to Resolution:"); eta != "" {
			reply += " Expected time to resolve: " + eta + "."
		}
		// Wrapped in a fence on purpose: the parser must unwrap it.
		return fmt.Sprintf("```json\n{\"reply\": %q, \"status\": %q}\n```", reply, status), nil

	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

func lastCustomerLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "Customer:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Customer:"))
		}
	}
	return ""
}

// section extracts the first non-empty line after a labeled prompt section.
func section(prompt, label string) string {
	idx := strings.Index(prompt, label)
	if idx < 0 {
		return ""
	}
	rest := prompt[idx+len(label):]
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
