package conversation

import "strings"

// escalationKeywords trigger the routing stage when they appear in the
// extracted action items.
var escalationKeywords = []string{
	"escalate",
	"escalation",
	"supervisor",
	"manager",
	"tier 2",
	"tier 3",
	"specialist",
	"expert",
}

// NeedsEscalation decides, from the extracted action items alone, whether the
// escalation routing stage must run. Deterministic, no I/O.
func NeedsEscalation(actions string) bool {
	if actions == "" {
		return false
	}
	lower := strings.ToLower(actions)
	for _, keyword := range escalationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
