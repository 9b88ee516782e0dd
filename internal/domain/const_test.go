package domain

import "testing"

func TestApplicationTransitions(t *testing.T) {
	cases := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{ApplicationPending, ApplicationReviewed, true},
		{ApplicationPending, ApplicationInterview, true},
		{ApplicationPending, ApplicationRejected, true},
		{ApplicationPending, ApplicationHired, true},
		{ApplicationReviewed, ApplicationInterview, true},
		{ApplicationReviewed, ApplicationPending, false},
		{ApplicationInterview, ApplicationHired, true},
		{ApplicationInterview, ApplicationReviewed, false},
		{ApplicationHired, ApplicationRejected, false},
		{ApplicationRejected, ApplicationPending, false},
		{ApplicationRejected, ApplicationHired, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []ApplicationStatus{ApplicationHired, ApplicationRejected} {
		for _, next := range []ApplicationStatus{
			ApplicationPending, ApplicationReviewed, ApplicationInterview,
			ApplicationRejected, ApplicationHired,
		} {
			if terminal.CanTransitionTo(next) {
				t.Errorf("terminal state %s should not transition to %s", terminal, next)
			}
		}
	}
}
