package dispatch

import (
	"context"

	"github.com/nerrad567/deviceservice/internal/resource"
)

// Protocol decides how to answer events from one kind of adapter.
//
// Implementations always return a response; failures are expressed in the
// response's result field, never as an error.
type Protocol interface {
	QueryDevice(ctx context.Context, deviceID string) QueryResponse
	QueryCredential(ctx context.Context, deviceID string) CredentialResponse
	DeviceChange(ctx context.Context, reason string, device Device) ChangeResponse
}

// Unsupported rejects and fails everything. Embed it to implement only the
// surfaces a protocol actually supports.
type Unsupported struct{}

// QueryDevice rejects.
func (Unsupported) QueryDevice(context.Context, string) QueryResponse {
	return Reject()
}

// QueryCredential fails.
func (Unsupported) QueryCredential(context.Context, string) CredentialResponse {
	return CredentialFail()
}

// DeviceChange fails.
func (Unsupported) DeviceChange(context.Context, string, Device) ChangeResponse {
	return ChangeFail()
}

// CronTabReconciler upserts CronTabs. Implemented by *reconcile.Reconciler.
type CronTabReconciler interface {
	ReconcileCronTab(ctx context.Context, namespace, name string, spec resource.CronTabSpec) error
}

// AssetReconciler creates Assets if absent. Implemented by *reconcile.Reconciler.
type AssetReconciler interface {
	ReconcileAsset(ctx context.Context, namespace, key string, spec resource.AssetSpec) (string, error)
}
