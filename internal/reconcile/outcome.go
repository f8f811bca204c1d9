package reconcile

import (
	"context"
	"time"

	"github.com/nerrad567/deviceservice/internal/resource"
)

// Action is what a reconciliation did to the store.
type Action string

// Reconciliation actions.
const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Outcome describes a single finished reconciliation.
type Outcome struct {
	Kind      resource.Kind
	Namespace string
	Name      string
	Action    Action

	// LookupFailure is the class of the failed lookup that led to a create
	// attempt. Empty when the object was found.
	LookupFailure resource.LookupFailure

	// Capacity is the CronTab capacity written by this reconciliation.
	Capacity int32

	Err      error
	Duration time.Duration
	At       time.Time
}

// Observer receives every reconciliation outcome.
//
// Implementations must not block for long and handle their own failures;
// the reconciliation result is already decided when they are called.
type Observer interface {
	ObserveReconcile(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, outcome Outcome)

// ObserveReconcile calls f(ctx, outcome).
func (f ObserverFunc) ObserveReconcile(ctx context.Context, outcome Outcome) {
	f(ctx, outcome)
}
