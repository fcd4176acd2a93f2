package builtin

import (
	"context"
	"net/http"
	"testing"

	apitest "github.com/kbukum/flowcheck/apiclient/testutil"
	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
	storetest "github.com/kbukum/flowcheck/store/testutil"
)

func TestStateTransitionsHappyPath(t *testing.T) {
	s, _, target := behaviorTarget(t)

	out, err := NewStateTransitions().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusPassed {
		t.Fatalf("expected PASSED, got %s with findings %+v", out.Status, out.Findings)
	}
	// Four legal transitions and three rejected illegal ones.
	if out.TotalChecks != 7 || out.Passed != 7 {
		t.Errorf("expected 7/7 probes passed, got %d/%d", out.Passed, out.TotalChecks)
	}

	tasks, err := s.Tasks(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("tasks read failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("expected scratch tasks to be cleaned up, found %d live tasks", len(tasks))
	}
}

func TestStateTransitionsFlagsAcceptedIllegalTransitions(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.AllowIllegalTransitions(true)

	out, err := NewStateTransitions().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusFailed {
		t.Fatalf("expected FAILED, got %s", out.Status)
	}
	if out.TotalChecks != 7 || out.Failed != 3 || out.Passed != 4 {
		t.Errorf("expected 3 of 7 probes failed, got total=%d failed=%d passed=%d",
			out.TotalChecks, out.Failed, out.Passed)
	}
	for _, f := range findingsIn(out, check.CategoryStateTransition) {
		if !f.IsCritical() || f.Field != "status" {
			t.Errorf("unexpected finding: %+v", f)
		}
	}
}

func TestStateTransitionsFlagsRejectedLegalTransitions(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.ForceStatus(apitest.OpUpdate, http.StatusUnprocessableEntity)

	out, err := NewStateTransitions().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusFailed {
		t.Fatalf("expected FAILED, got %s", out.Status)
	}
	// The first chain step and the cancel step fail as rejected legal
	// transitions; the forced rejection makes the final illegal probe pass.
	if out.TotalChecks != 3 || out.Failed != 2 || out.Passed != 1 {
		t.Errorf("expected 2 of 3 probes failed, got total=%d failed=%d passed=%d",
			out.TotalChecks, out.Failed, out.Passed)
	}
}

func TestStateTransitionsScratchCreateFailure(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.ForceStatus(apitest.OpCreate, http.StatusInternalServerError)

	out, err := NewStateTransitions().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.TotalChecks != 1 || out.Failed != 1 {
		t.Errorf("expected a single failed probe, got total=%d failed=%d", out.TotalChecks, out.Failed)
	}
	if out.Status != check.StatusFailed {
		t.Errorf("expected FAILED, got %s", out.Status)
	}
}

func TestStateTransitionsTransportFault(t *testing.T) {
	s := storetest.MustOpen(t)
	storetest.SeedWorkspace(t, s)
	api := apitest.New(t, s)
	client := api.Client(t)
	api.Close()

	_, err := NewStateTransitions().Validate(context.Background(), check.Target{Store: s, API: client})
	if err == nil {
		t.Fatal("expected a transport error from a closed server")
	}
}
