package flow

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusBlocked, true},
		{StatusPending, StatusSkipped, true},
		{StatusPending, StatusCompleted, false},
		{StatusRunning, StatusCompleted, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusBlocked, false},
		{StatusCompleted, StatusRunning, false},
		{StatusFailed, StatusRunning, false},
		{StatusBlocked, StatusRunning, false},
		{StatusSkipped, StatusRunning, false},
		{"bogus", StatusRunning, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []string{StatusCompleted, StatusFailed, StatusBlocked, StatusSkipped}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []string{StatusPending, StatusRunning} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if IsTerminal("bogus") {
		t.Error("unknown status should not be terminal")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusBlocked, StatusSkipped} {
		if !ValidStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidStatus("RETRYING") {
		t.Error("RETRYING should not be valid")
	}
}
