// Package resource defines the managed resources the device service
// reconciles and the Store contract used to reach the cluster that holds them.
//
// Two namespaced kinds are managed:
//
//   - Asset (deviceregistry.microsoft.com/v1beta1): a discovered device with
//     its endpoint, data points and events.
//   - CronTab (stable.example.com/v1): a periodic-work descriptor whose
//     capacity is bumped on every matching provisioning event.
//
// The Store interface is deliberately small (find, create, update, list) and
// stateless. The Kubernetes-backed implementation lives in
// internal/infrastructure/kube; tests use the same implementation over a fake
// dynamic client.
//
// # Errors
//
// Store implementations classify failures so callers can tell them apart:
//
//	if errors.Is(err, resource.ErrNotFound) { ... }   // object absent
//	var apiErr *resource.APIError
//	if errors.As(err, &apiErr) { ... }                  // server rejected the call
//	if errors.Is(err, resource.ErrTransport) { ... }  // server unreachable
package resource
