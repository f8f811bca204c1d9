package audit

import (
	"context"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/reconcile"
	"github.com/nerrad567/deviceservice/internal/resource"
)

// writeTimeout bounds a single audit insert. Writes use their own context so
// a cancelled request still leaves a trail.
const writeTimeout = 2 * time.Second

// Recorder writes every reconciliation outcome to a Repository.
type Recorder struct {
	repo   Repository
	logger *logging.Logger
}

var _ reconcile.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder.
func NewRecorder(repo Repository, logger *logging.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger.With("component", "audit")}
}

// ObserveReconcile implements reconcile.Observer. Write failures are logged.
func (r *Recorder) ObserveReconcile(ctx context.Context, o reconcile.Outcome) {
	entry := EntryFromOutcome(o)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.repo.Create(writeCtx, &entry); err != nil {
		r.logger.Error("writing audit entry failed",
			"kind", entry.Kind,
			"namespace", entry.Namespace,
			"name", entry.Name,
			"error", err,
		)
	}
}

// EntryFromOutcome converts an outcome into an unsaved entry.
func EntryFromOutcome(o reconcile.Outcome) Entry {
	e := Entry{
		Kind:          o.Kind.Kind,
		Namespace:     o.Namespace,
		Name:          o.Name,
		Action:        string(o.Action),
		LookupFailure: string(o.LookupFailure),
		DurationMS:    o.Duration.Milliseconds(),
		CreatedAt:     o.At.UTC(),
	}
	if o.Kind == resource.KindCronTab && o.Action != reconcile.ActionUnchanged {
		c := o.Capacity
		e.Capacity = &c
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	return e
}
