package resource

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want LookupFailure
	}{
		{name: "not found", err: ErrNotFound, want: LookupNotFound},
		{name: "wrapped not found", err: fmt.Errorf("find asset: %w", ErrNotFound), want: LookupNotFound},
		{name: "api error", err: &APIError{Code: 403, Reason: "Forbidden", Message: "denied"}, want: LookupAPI},
		{name: "wrapped api error", err: fmt.Errorf("find: %w", &APIError{Code: 500}), want: LookupAPI},
		{name: "transport", err: fmt.Errorf("%w: dial tcp: connection refused", ErrTransport), want: LookupTransport},
		{name: "unknown", err: errors.New("boom"), want: LookupUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLookup(tt.err); got != tt.want {
				t.Errorf("ClassifyLookup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: 409, Reason: "AlreadyExists", Message: `crontabs.stable.example.com "cam-1" already exists`}

	want := `resource: api error 409 (AlreadyExists): crontabs.stable.example.com "cam-1" already exists`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKind(t *testing.T) {
	if got := KindAsset.APIVersion(); got != "deviceregistry.microsoft.com/v1beta1" {
		t.Errorf("KindAsset.APIVersion() = %q", got)
	}
	if got := KindCronTab.ListKind(); got != "CronTabList" {
		t.Errorf("KindCronTab.ListKind() = %q", got)
	}
	gvr := KindCronTab.GroupVersionResource()
	if gvr.Group != "stable.example.com" || gvr.Version != "v1" || gvr.Resource != "crontabs" {
		t.Errorf("KindCronTab.GroupVersionResource() = %v", gvr)
	}
	if got := KindAsset.String(); got != "assets.deviceregistry.microsoft.com" {
		t.Errorf("KindAsset.String() = %q", got)
	}
}
