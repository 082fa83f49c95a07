package repo

import (
	"context"
	"fmt"

	"github.com/asteroid-belt/recall/internal/errs"
)

// SagaStep pairs a forward action with its compensating action. Steps whose
// effects need no undoing may leave Compensate nil.
type SagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// runSaga applies forward steps in order. When a step fails, the
// compensations of every already-executed step run in reverse order. A failed
// compensation leaves the store partially applied, which automated retry
// cannot repair, so it is reported as ErrManualIntervention instead of the
// ordinary step error.
func runSaga(ctx context.Context, steps []SagaStep) error {
	for i, step := range steps {
		err := step.Run(ctx)
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			prev := steps[j]
			if prev.Compensate == nil {
				continue
			}
			if cerr := prev.Compensate(ctx); cerr != nil {
				return fmt.Errorf("step %q failed (%v); rollback of %q also failed (%v): %w",
					step.Name, err, prev.Name, cerr, errs.ErrManualIntervention)
			}
		}
		return fmt.Errorf("step %q: %w", step.Name, err)
	}
	return nil
}
