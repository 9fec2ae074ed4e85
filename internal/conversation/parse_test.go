package conversation

import "testing"

func TestParseDispatchOutputJSON(t *testing.T) {
	res := ParseDispatchOutput(`{"reply":"ok","status":"resolved"}`)
	if res.Reply != "ok" || res.Status != "resolved" {
		t.Fatalf("ParseDispatchOutput() = %+v, want reply=ok status=resolved", res)
	}
	if res.Degraded {
		t.Fatalf("Degraded = true, want false for valid JSON")
	}
}

func TestParseDispatchOutputFencedJSON(t *testing.T) {
	raw := "```json\n{\"reply\":\"ok\",\"status\":\"continue\"}\n```"
	res := ParseDispatchOutput(raw)
	if res.Reply != "ok" || res.Status != "continue" {
		t.Fatalf("ParseDispatchOutput() = %+v, want unwrapped fence parsed", res)
	}
	if res.Degraded {
		t.Fatalf("Degraded = true, want false for fenced JSON")
	}
}

func TestParseDispatchOutputBareFence(t *testing.T) {
	raw := "Here you go:\n```\n{\"reply\":\"done\",\"status\":\"resolved\"}\n```\nanything after"
	res := ParseDispatchOutput(raw)
	if res.Reply != "done" || res.Status != "resolved" {
		t.Fatalf("ParseDispatchOutput() = %+v, want bare fence unwrapped", res)
	}
}

func TestParseDispatchOutputFreeText(t *testing.T) {
	res := ParseDispatchOutput("just some free text")
	if res.Reply != "just some free text" {
		t.Fatalf("Reply = %q, want raw text", res.Reply)
	}
	if res.Status != "continue" {
		t.Fatalf("Status = %q, want continue", res.Status)
	}
	if !res.Degraded {
		t.Fatalf("Degraded = false, want true for free text")
	}
}

func TestParseDispatchOutputEmpty(t *testing.T) {
	res := ParseDispatchOutput("   ")
	if res.Reply != "" || res.Status != "continue" {
		t.Fatalf("ParseDispatchOutput() = %+v, want empty reply with continue", res)
	}
}

func TestParseDispatchOutputPassesThroughUnknownStatus(t *testing.T) {
	res := ParseDispatchOutput(`{"reply":"ok","status":"reslved"}`)
	if res.Status != "reslved" {
		t.Fatalf("Status = %q, want typo passed through untouched", res.Status)
	}
}

func TestParseDispatchOutputMissingStatusDefaults(t *testing.T) {
	res := ParseDispatchOutput(`{"reply":"ok"}`)
	if res.Status != "continue" {
		t.Fatalf("Status = %q, want continue default", res.Status)
	}
}
