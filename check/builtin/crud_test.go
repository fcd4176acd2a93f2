package builtin

import (
	"context"
	"net/http"
	"strings"
	"testing"

	apitest "github.com/kbukum/flowcheck/apiclient/testutil"
	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
	storetest "github.com/kbukum/flowcheck/store/testutil"
)

// behaviorTarget wires a seeded store and a fake API into a check target.
func behaviorTarget(t *testing.T) (*store.Store, *apitest.API, check.Target) {
	t.Helper()
	s := storetest.MustOpen(t)
	storetest.SeedWorkspace(t, s)
	api := apitest.New(t, s)
	return s, api, check.Target{Store: s, API: api.Client(t)}
}

func TestCRUDBehaviorHappyPath(t *testing.T) {
	s, _, target := behaviorTarget(t)

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusPassed {
		t.Fatalf("expected PASSED, got %s with findings %+v", out.Status, out.Findings)
	}
	if out.TotalChecks != 5 || out.Passed != 5 {
		t.Errorf("expected 5/5 probes passed, got %d/%d", out.Passed, out.TotalChecks)
	}

	// The cycle deletes its own probe task, so only the seeded tasks remain.
	tasks, err := s.Tasks(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("tasks read failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("expected the probe task to be cleaned up, found %d live tasks", len(tasks))
	}
}

func TestCRUDBehaviorCreateFailureAbortsCycle(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.ForceStatus(apitest.OpCreate, http.StatusInternalServerError)

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusFailed {
		t.Fatalf("expected FAILED, got %s", out.Status)
	}
	if out.TotalChecks != 1 || out.Failed != 1 {
		t.Errorf("expected the cycle to stop after the create probe, got %d probes with %d failed",
			out.TotalChecks, out.Failed)
	}
	found := findingsIn(out, check.CategoryBehavior)
	if len(found) != 1 || !strings.Contains(found[0].Description, "500") {
		t.Errorf("unexpected findings: %+v", found)
	}
}

func TestCRUDBehaviorCorruptEcho(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.CorruptEcho(true)

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusFailed {
		t.Fatalf("expected FAILED, got %s", out.Status)
	}
	// Create, read, and update all echo the mangled title; delete and the
	// 404 probe still pass.
	if out.TotalChecks != 5 || out.Failed != 3 || out.Passed != 2 {
		t.Errorf("expected 3 of 5 probes failed, got total=%d failed=%d passed=%d",
			out.TotalChecks, out.Failed, out.Passed)
	}
	if out.CriticalCount != 3 {
		t.Errorf("expected 3 critical findings, got %d", out.CriticalCount)
	}
}

func TestCRUDBehaviorForcedReadFailure(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.ForceStatus(apitest.OpRead, http.StatusNotFound)

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	// The mid-cycle read fails, yet the forced 404 makes the final
	// read-after-delete probe look correct.
	if out.TotalChecks != 5 || out.Failed != 1 || out.Passed != 4 {
		t.Errorf("expected exactly the read probe to fail, got total=%d failed=%d passed=%d",
			out.TotalChecks, out.Failed, out.Passed)
	}
}

func TestCRUDBehaviorDeleteFailureAbortsCycle(t *testing.T) {
	_, api, target := behaviorTarget(t)
	api.ForceStatus(apitest.OpDelete, http.StatusInternalServerError)

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.TotalChecks != 4 || out.Failed != 1 || out.Passed != 3 {
		t.Errorf("expected the cycle to stop after the delete probe, got total=%d failed=%d passed=%d",
			out.TotalChecks, out.Failed, out.Passed)
	}
}

func TestCRUDBehaviorWithoutProjects(t *testing.T) {
	s := storetest.MustOpen(t)
	api := apitest.New(t, s)
	target := check.Target{Store: s, API: api.Client(t)}

	out, err := NewCRUDBehavior().Validate(context.Background(), target)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if out.Status != check.StatusPassedWithWarnings {
		t.Fatalf("expected PASSED_WITH_WARNINGS, got %s", out.Status)
	}
	if out.TotalChecks != 1 || out.Warnings != 1 {
		t.Errorf("expected a single warning probe, got total=%d warnings=%d", out.TotalChecks, out.Warnings)
	}
}

func TestCRUDBehaviorTransportFault(t *testing.T) {
	s := storetest.MustOpen(t)
	storetest.SeedWorkspace(t, s)
	api := apitest.New(t, s)
	client := api.Client(t)
	api.Close()

	out, err := NewCRUDBehavior().Validate(context.Background(), check.Target{Store: s, API: client})
	if err == nil {
		t.Fatal("expected a transport error from a closed server")
	}
	if out != nil {
		t.Errorf("expected nil outcome on fault, got %+v", out)
	}
}
