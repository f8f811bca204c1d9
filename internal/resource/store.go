package resource

import "context"

// Store is a stateless gateway to the declarative store of record.
//
// All methods address a single namespaced object of the given kind. Specs
// are plain Go values (AssetSpec, CronTabSpec) that round-trip through JSON.
//
// Thread Safety: implementations must be safe for concurrent use.
type Store interface {
	// Find loads the spec of an existing object into into, which must be a
	// pointer. Returns ErrNotFound, *APIError or ErrTransport on failure.
	Find(ctx context.Context, kind Kind, namespace, name string, into any) error

	// Create creates a new object with the given spec.
	Create(ctx context.Context, kind Kind, namespace, name string, spec any) error

	// Update replaces the spec of an existing object. No resourceVersion
	// precondition is sent, so concurrent updates are last-writer-wins.
	Update(ctx context.Context, kind Kind, namespace, name string, spec any) error

	// List returns the names of all objects of kind in namespace. An empty
	// namespace lists across all namespaces.
	List(ctx context.Context, kind Kind, namespace string) ([]string, error)
}
