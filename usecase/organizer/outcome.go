package organizer

import (
	"context"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/placement"
)

// Status is the result class of a drag.
type Status string

const (
	StatusApplied             Status = "applied"
	StatusNoOp                Status = "noop"
	StatusDestinationNotFound Status = "destination_not_found"
	StatusRecordNotFound      Status = "record_not_found"
	StatusPersistenceFailed   Status = "persistence_failed"
)

// Outcome reports a drag. It is returned once the in-memory change is visible; persistence
// may still be running. Use Wait for the final result.
type Outcome struct {
	Status    Status
	Operation placement.Operation
	Changed   []domain.Ref
	Err       error

	write *pendingWrite
}

type pendingWrite struct {
	done chan struct{}
	err  error
}

// Pending reports whether a detached write is attached to the outcome.
func (o Outcome) Pending() bool {
	if o.write == nil {
		return false
	}
	select {
	case <-o.write.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the detached write has finished and returns the final outcome. If ctx
// ends first the outcome is returned as it stands with Err set to the context error; the
// write keeps running.
func (o Outcome) Wait(ctx context.Context) Outcome {
	w := o.write
	if w == nil {
		return o
	}
	select {
	case <-w.done:
	case <-ctx.Done():
		o.Err = ctx.Err()
		return o
	}
	o.write = nil
	if w.err != nil {
		o.Status = StatusPersistenceFailed
		o.Err = w.err
	}
	return o
}
