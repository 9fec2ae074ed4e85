package engine

import (
	"strings"
	"testing"
)

func TestBuildPromptSummarizeIncludesConversation(t *testing.T) {
	prompt := BuildPrompt(StageSummarize, PromptInputs{Conversation: "Customer: the app crashes on login"})
	if !strings.Contains(prompt, "Customer: the app crashes on login") {
		t.Fatalf("prompt = %q, want conversation included", prompt)
	}
}

func TestBuildPromptResolutionIncludesKnowledge(t *testing.T) {
	prompt := BuildPrompt(StageFindResolution, PromptInputs{
		Summary:          "login crash",
		Actions:          "- reinstall",
		KnowledgeContext: []string{"crash on login -> clear cache"},
	})
	if !strings.Contains(prompt, "Relevant past resolutions:") {
		t.Fatalf("prompt = %q, want knowledge section", prompt)
	}
	if !strings.Contains(prompt, "crash on login -> clear cache") {
		t.Fatalf("prompt = %q, want knowledge entry", prompt)
	}
}

func TestBuildPromptResolutionOmitsEmptyKnowledge(t *testing.T) {
	prompt := BuildPrompt(StageFindResolution, PromptInputs{Summary: "s", Actions: "a"})
	if strings.Contains(prompt, "Relevant past resolutions:") {
		t.Fatalf("prompt = %q, want no knowledge section", prompt)
	}
}

func TestBuildPromptUnknownStage(t *testing.T) {
	if got := BuildPrompt(Stage("bogus"), PromptInputs{}); got != "" {
		t.Fatalf("prompt = %q, want empty for unknown stage", got)
	}
}
