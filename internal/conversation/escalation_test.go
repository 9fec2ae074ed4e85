package conversation

import "testing"

func TestNeedsEscalation(t *testing.T) {
	cases := []struct {
		actions string
		want    bool
	}{
		{"Escalate to billing due to failed refund", true},
		{"Contact the SUPERVISOR about the outage", true},
		{"Route to tier 2 support", true},
		{"Needs a database specialist", true},
		{"Reset user password", false},
		{"Follow up in 48 hours", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := NeedsEscalation(tc.actions); got != tc.want {
			t.Fatalf("NeedsEscalation(%q) = %v, want %v", tc.actions, got, tc.want)
		}
	}
}
