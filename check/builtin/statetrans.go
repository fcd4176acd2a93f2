package builtin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
	"github.com/kbukum/flowcheck/util"
)

// StateTransitions verifies that the API enforces the task status machine.
// It walks a scratch task through the legal chain todo, in_progress, review,
// done and expects acceptance at each step, then attempts transitions the
// machine forbids and expects rejection. Scratch tasks are deleted afterwards
// on a best-effort basis.
type StateTransitions struct{}

// NewStateTransitions creates the state transition check.
func NewStateTransitions() StateTransitions { return StateTransitions{} }

// Name returns the check identifier.
func (StateTransitions) Name() string { return NameStateTransitions }

// Validate probes legal and illegal transitions. Transport failures abort
// the check as a fault; rejected setup steps skip the probes that depend
// on them.
func (StateTransitions) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	r := check.NewRecorder(NameStateTransitions)

	projectID, finding, err := probeProject(ctx, target)
	if err != nil {
		return nil, err
	}
	if finding != nil {
		r.Record(*finding)
		return r.Outcome(), nil
	}

	var scratch []string
	defer func() {
		for _, id := range scratch {
			_, _ = target.API.DeleteTask(ctx, id)
		}
	}()

	// Legal chain on the first scratch task.
	chainID, err := createScratchTask(ctx, target.API, projectID, "transition chain probe")
	if err != nil {
		return nil, err
	}
	if chainID == "" {
		r.Record(scratchFailure())
		return r.Outcome(), nil
	}
	scratch = append(scratch, chainID)

	chainDone := true
	for _, next := range []string{store.TaskStatusInProgress, store.TaskStatusReview, store.TaskStatusDone} {
		res, err := target.API.UpdateTask(ctx, chainID, apiclient.TaskUpdate{Status: util.Ptr(next)})
		if err != nil {
			return nil, err
		}
		if !accepted(res.StatusCode) {
			r.Record(check.Finding{
				Category:    check.CategoryStateTransition,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "status",
				RecordID:    chainID,
				Description: fmt.Sprintf("legal transition to %q was rejected with status %d", next, res.StatusCode),
			})
			chainDone = false
			break
		}
		r.Record()
	}

	// A done task must stay done.
	if chainDone {
		if err := probeIllegal(ctx, target.API, r, chainID, store.TaskStatusDone, store.TaskStatusTodo); err != nil {
			return nil, err
		}
	}

	// A canceled task must stay canceled.
	cancelID, err := createScratchTask(ctx, target.API, projectID, "canceled transition probe")
	if err != nil {
		return nil, err
	}
	if cancelID == "" {
		r.Record(scratchFailure())
	} else {
		scratch = append(scratch, cancelID)
		res, err := target.API.UpdateTask(ctx, cancelID, apiclient.TaskUpdate{Status: util.Ptr(store.TaskStatusCanceled)})
		if err != nil {
			return nil, err
		}
		if !accepted(res.StatusCode) {
			r.Record(check.Finding{
				Category:    check.CategoryStateTransition,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "status",
				RecordID:    cancelID,
				Description: fmt.Sprintf("legal transition to %q was rejected with status %d", store.TaskStatusCanceled, res.StatusCode),
			})
		} else {
			r.Record()
			if err := probeIllegal(ctx, target.API, r, cancelID, store.TaskStatusCanceled, store.TaskStatusInProgress); err != nil {
				return nil, err
			}
		}
	}

	// A task must not jump from todo straight to done.
	skipID, err := createScratchTask(ctx, target.API, projectID, "skipped stage probe")
	if err != nil {
		return nil, err
	}
	if skipID == "" {
		r.Record(scratchFailure())
	} else {
		scratch = append(scratch, skipID)
		if err := probeIllegal(ctx, target.API, r, skipID, store.TaskStatusTodo, store.TaskStatusDone); err != nil {
			return nil, err
		}
	}

	return r.Outcome(), nil
}

// createScratchTask creates a todo task for transition probing. It returns
// an empty id when the API refused the create, and an error only on
// transport failure.
func createScratchTask(ctx context.Context, api *apiclient.Client, projectID, title string) (string, error) {
	res, err := api.CreateTask(ctx, apiclient.TaskPayload{
		ProjectID: projectID,
		Title:     title,
		Status:    store.TaskStatusTodo,
		Labels:    []string{"flowcheck-probe"},
	})
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusCreated || res.Task == nil || res.Task.ID == "" {
		return "", nil
	}
	return res.Task.ID, nil
}

// probeIllegal attempts a forbidden transition and records one probe:
// passed when the API rejects it with a client error, critical when the
// API accepts it.
func probeIllegal(ctx context.Context, api *apiclient.Client, r *check.Recorder, id, from, to string) error {
	res, err := api.UpdateTask(ctx, id, apiclient.TaskUpdate{Status: util.Ptr(to)})
	if err != nil {
		return err
	}
	if accepted(res.StatusCode) {
		r.Record(check.Finding{
			Category:    check.CategoryStateTransition,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Field:       "status",
			RecordID:    id,
			Description: fmt.Sprintf("illegal transition from %q to %q was accepted with status %d", from, to, res.StatusCode),
		})
		return nil
	}
	r.Record()
	return nil
}

func scratchFailure() check.Finding {
	return check.Finding{
		Category:    check.CategoryStateTransition,
		Severity:    check.SeverityCritical,
		Table:       "tasks",
		Description: "could not create a scratch task for transition probes",
	}
}

// accepted reports whether the API treated the request as successful.
func accepted(status int) bool { return status >= 200 && status < 300 }
