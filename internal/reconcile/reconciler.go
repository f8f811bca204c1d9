package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/naming"
	"github.com/nerrad567/deviceservice/internal/resource"
)

// ErrCapacityExhausted is returned when an existing CronTab's capacity
// cannot be incremented without overflowing.
var ErrCapacityExhausted = errors.New("reconcile: crontab capacity at maximum")

// Reconciler brings single resources in line with a desired spec.
//
// Thread Safety: safe for concurrent use. It holds no per-call state; the
// observer list is fixed at construction.
type Reconciler struct {
	store     resource.Store
	digester  *naming.Digester
	logger    *logging.Logger
	observers []Observer
	now       func() time.Time
}

// New creates a Reconciler.
//
// Parameters:
//   - store: Store of record
//   - digester: Derives Asset names from device keys
//   - logger: Logger, nil for the default
//   - observers: Notified after every reconciliation
func New(store resource.Store, digester *naming.Digester, logger *logging.Logger, observers ...Observer) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		store:     store,
		digester:  digester,
		logger:    logger.With("component", "reconcile"),
		observers: observers,
		now:       time.Now,
	}
}

// ReconcileCronTab upserts the CronTab namespace/name.
//
// The name is sanitised first so lookup and write address the same object.
// If the CronTab exists its stored spec is written back with capacity + 1;
// otherwise spec is created as given. A stored capacity already at
// math.MaxInt32 is left as is and ErrCapacityExhausted is returned.
func (r *Reconciler) ReconcileCronTab(ctx context.Context, namespace, name string, spec resource.CronTabSpec) error {
	start := r.now()
	name = naming.SanitizeName(name)
	outcome := Outcome{Kind: resource.KindCronTab, Namespace: namespace, Name: name}

	var existing resource.CronTabSpec
	lookupErr := r.store.Find(ctx, resource.KindCronTab, namespace, name, &existing)

	var err error
	switch {
	case lookupErr == nil && existing.Capacity == math.MaxInt32:
		outcome.Capacity = existing.Capacity
		err = ErrCapacityExhausted
	case lookupErr == nil:
		existing.Capacity++
		outcome.Capacity = existing.Capacity
		outcome.Action = ActionUpdated
		err = r.store.Update(ctx, resource.KindCronTab, namespace, name, existing)
	default:
		outcome.LookupFailure = r.logLookupFailure(outcome, lookupErr)
		outcome.Capacity = spec.Capacity
		outcome.Action = ActionCreated
		err = r.store.Create(ctx, resource.KindCronTab, namespace, name, spec)
	}

	if err != nil {
		err = fmt.Errorf("reconcile crontab %s/%s: %w", namespace, name, err)
		outcome.Action = ActionFailed
	}
	r.finish(ctx, outcome, start, err)
	return err
}

// ReconcileAsset ensures an Asset exists for key and returns its name.
//
// An existing Asset is left untouched and reported as success.
func (r *Reconciler) ReconcileAsset(ctx context.Context, namespace, key string, spec resource.AssetSpec) (string, error) {
	start := r.now()
	name := r.digester.AssetName(key)
	outcome := Outcome{Kind: resource.KindAsset, Namespace: namespace, Name: name}

	var existing resource.AssetSpec
	lookupErr := r.store.Find(ctx, resource.KindAsset, namespace, name, &existing)
	if lookupErr == nil {
		outcome.Action = ActionUnchanged
		r.finish(ctx, outcome, start, nil)
		return name, nil
	}

	outcome.LookupFailure = r.logLookupFailure(outcome, lookupErr)
	outcome.Action = ActionCreated

	err := r.store.Create(ctx, resource.KindAsset, namespace, name, spec)
	if err != nil {
		err = fmt.Errorf("reconcile asset %s/%s: %w", namespace, name, err)
		outcome.Action = ActionFailed
	}
	r.finish(ctx, outcome, start, err)
	return name, err
}

// logLookupFailure records why a lookup missed before a create is attempted.
func (r *Reconciler) logLookupFailure(o Outcome, err error) resource.LookupFailure {
	class := resource.ClassifyLookup(err)
	attrs := []any{
		"kind", o.Kind.Kind,
		"namespace", o.Namespace,
		"name", o.Name,
		"lookup_failure", string(class),
	}

	if class == resource.LookupNotFound {
		r.logger.Debug("resource not found, creating", attrs...)
	} else {
		r.logger.Warn("lookup failed, attempting create", append(attrs, "error", err)...)
	}
	return class
}

func (r *Reconciler) finish(ctx context.Context, o Outcome, start time.Time, err error) {
	o.Err = err
	o.At = r.now()
	o.Duration = o.At.Sub(start)

	attrs := []any{
		"kind", o.Kind.Kind,
		"namespace", o.Namespace,
		"name", o.Name,
		"action", string(o.Action),
	}
	switch {
	case err != nil:
		var apiErr *resource.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "code", apiErr.Code, "reason", apiErr.Reason)
		}
		r.logger.Error("reconcile failed", append(attrs, "error", err)...)
	case o.Action == ActionUnchanged:
		r.logger.Debug("resource already present", attrs...)
	default:
		r.logger.Info("resource reconciled", attrs...)
	}

	for _, obs := range r.observers {
		obs.ObserveReconcile(ctx, o)
	}
}
