package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fmeurer/caseflow/internal/routing"
)

// Stage identifies one analysis step of the support pipeline.
type Stage string

const (
	StageSummarize       Stage = "summarize"
	StageExtractActions  Stage = "extract_actions"
	StageFindResolution  Stage = "find_resolution"
	StageEstimateETA     Stage = "estimate_eta"
	StageRouteEscalation Stage = "route_escalation"
	StageDispatch        Stage = "dispatch"
)

// Invoker executes one stage against the reasoning backend and returns its
// raw textual output. Implementations do not retry; a failure is surfaced
// once per call and handled by the orchestrator.
type Invoker interface {
	Invoke(ctx context.Context, stage Stage, prompt string) (string, error)
}

// Config controls invoker construction.
type Config struct {
	Mode    string
	HTTPURL string
	Routing *routing.Table
}

// NewInvoker builds the configured stage invoker. Auto mode prefers the HTTP
// backend when a URL is configured and falls back to the deterministic mock.
// The returned mode is what was actually resolved ("http" or "mock"), never
// "auto", so health reporting reflects the live backend.
func NewInvoker(cfg Config) (Invoker, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPInvoker(cfg.HTTPURL), "http", nil
		}
		return NewMockInvoker(cfg.Routing), "mock", nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, "", errors.New("engine HTTP url is required for http mode")
		}
		return NewHTTPInvoker(cfg.HTTPURL), "http", nil
	case "mock":
		return NewMockInvoker(cfg.Routing), "mock", nil
	default:
		return nil, "", fmt.Errorf("unsupported engine mode %q", cfg.Mode)
	}
}

// ErrClass buckets an invocation error for metrics labels.
func ErrClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream"
	}
}
