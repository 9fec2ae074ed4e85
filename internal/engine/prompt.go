package engine

import (
	"fmt"
	"strings"
)

// PromptInputs carries the per-turn fields a stage prompt can reference.
// Which fields are populated depends on the stage; the orchestrator fills
// them as the pipeline advances.
type PromptInputs struct {
	Conversation     string
	Summary          string
	Actions          string
	Resolution       string
	Routing          string
	ETA              string
	KnowledgeContext []string
	Teams            []string
}

// BuildPrompt renders the prompt for a stage from its inputs. The prompt is a
// pure function of (stage, inputs); no per-stage objects are involved.
func BuildPrompt(stage Stage, in PromptInputs) string {
	builder, ok := promptTable[stage]
	if !ok {
		return ""
	}
	return builder(in)
}

var promptTable = map[Stage]func(PromptInputs) string{
	StageSummarize: func(in PromptInputs) string {
		return fmt.Sprintf(
			"Summarize the following customer support conversation. Extract the main issue, "+
				"any important context (e.g. account details, technical specs), and what the "+
				"customer needs help with:\n\n%s",
			in.Conversation,
		)
	},
	StageExtractActions: func(in PromptInputs) string {
		return fmt.Sprintf(
			"From the following customer issue summary, identify and extract all actionable items "+
				"such as password resets, escalations, refunds, call scheduling, or follow-ups. "+
				"Return a bullet-point list of clear, actionable items:\n\n%s",
			in.Summary,
		)
	},
	StageFindResolution: func(in PromptInputs) string {
		var b strings.Builder
		b.WriteString("Based on the following customer issue summary and extracted action items, " +
			"identify the most likely resolution using prior knowledge, documentation, or historical cases.\n\n")
		fmt.Fprintf(&b, "Summary:\n%s\n\nActions:\n%s\n", in.Summary, in.Actions)
		if len(in.KnowledgeContext) > 0 {
			b.WriteString("\nRelevant past resolutions:\n")
			for _, entry := range in.KnowledgeContext {
				fmt.Fprintf(&b, "- %s\n", entry)
			}
		}
		return b.String()
	},
	StageEstimateETA: func(in PromptInputs) string {
		return fmt.Sprintf(
			"Given the issue summary and extracted action items, estimate how long it will take "+
				"to fully resolve this support request. Answer with a realistic time estimate such as "+
				"'2-3 business days' or 'Under 4 hours'.\n\nSummary:\n%s\n\nActions:\n%s",
			in.Summary, in.Actions,
		)
	},
	StageRouteEscalation: func(in PromptInputs) string {
		var b strings.Builder
		b.WriteString("Given the following list of action items, determine the appropriate " +
			"department or team to handle the escalation based on internal routing rules:\n\n")
		b.WriteString(in.Actions)
		if len(in.Teams) > 0 {
			fmt.Fprintf(&b, "\n\nKnown teams: %s", strings.Join(in.Teams, ", "))
		}
		return b.String()
	},
	StageDispatch: func(in PromptInputs) string {
		return fmt.Sprintf(
			"Aggregate the outputs from all previous steps and prepare a final response for the "+
				"customer. Respond with JSON of the form {\"reply\": string, \"status\": "+
				"\"continue\"|\"resolved\"|\"escalate\"}.\n\n"+
				"Summary:\n%s\n\nActions:\n%s\n\nSuggested Resolution:\n%s\n\nRouting Info:\n%s\n\n"+
				"Estimated Time to Resolution:\n%s",
			in.Summary, in.Actions, in.Resolution, in.Routing, in.ETA,
		)
	},
}
