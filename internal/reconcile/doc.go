// Package reconcile performs idempotent create-or-update of managed
// resources against a resource.Store.
//
// CronTabs are upserted: an existing object has its capacity raised by one,
// a missing one is created from the caller's spec. Assets are
// create-if-absent: once an Asset exists its spec is never touched again.
//
// A failed lookup always falls through to create, whatever the cause. The
// cause is classified, logged and reported to observers, but does not change
// the outcome. Lookup and write are two separate calls with no version
// precondition, so concurrent reconciliations of one identity may both
// create or may lose a capacity increment.
package reconcile
