package conversation

import (
	"encoding/json"
	"strings"
)

// DispatchResult is the structured form of the dispatch stage's output.
// Degraded marks the lossy fallback where raw text became the reply.
type DispatchResult struct {
	Reply    string
	Status   string
	Degraded bool
}

// ParseDispatchOutput converts raw dispatch output into {reply, status}. The
// output may be a JSON object, a JSON object wrapped in a Markdown fence, or
// arbitrary prose. This never fails: unparseable output degrades to a
// plain-text reply with status "continue".
//
// Status values outside the enumerated set pass through untouched; the
// orchestrator decides how to treat them.
func ParseDispatchOutput(raw string) DispatchResult {
	if strings.TrimSpace(raw) == "" {
		return DispatchResult{Reply: "", Status: string(StatusContinue)}
	}

	candidate := stripFence(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
		res := DispatchResult{Status: string(StatusContinue)}
		if reply, ok := obj["reply"].(string); ok {
			res.Reply = reply
		}
		if status, ok := obj["status"].(string); ok && strings.TrimSpace(status) != "" {
			res.Status = status
		}
		return res
	}

	return DispatchResult{Reply: raw, Status: string(StatusContinue), Degraded: true}
}

// stripFence unwraps the first Markdown code fence pair, with or without a
// language tag, for collaborators that wrap structured output in formatting.
func stripFence(raw string) string {
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+len("```"):]
		// A bare fence may still carry a language tag on the opening line.
		if nl := strings.Index(rest, "\n"); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(raw)
}
