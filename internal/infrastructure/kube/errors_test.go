package kube

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/nerrad567/deviceservice/internal/resource"
)

func TestClassify(t *testing.T) {
	gr := schema.GroupResource{Group: "stable.example.com", Resource: "crontabs"}

	tests := []struct {
		name string
		err  error
		want resource.LookupFailure
	}{
		{name: "not found", err: apierrors.NewNotFound(gr, "cam-1"), want: resource.LookupNotFound},
		{name: "forbidden", err: apierrors.NewForbidden(gr, "cam-1", errors.New("rbac")), want: resource.LookupAPI},
		{name: "conflict", err: apierrors.NewConflict(gr, "cam-1", errors.New("stale")), want: resource.LookupAPI},
		{name: "wrapped status", err: fmt.Errorf("get: %w", apierrors.NewInternalError(errors.New("etcd"))), want: resource.LookupAPI},
		{name: "dial failure", err: errors.New("dial tcp: connection refused"), want: resource.LookupTransport},
		{name: "cancelled", err: context.Canceled, want: resource.LookupTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resource.ClassifyLookup(classify(tt.err)); got != tt.want {
				t.Errorf("classify(%v) class = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_APIErrorFields(t *testing.T) {
	gr := schema.GroupResource{Group: "stable.example.com", Resource: "crontabs"}

	var apiErr *resource.APIError
	if !errors.As(classify(apierrors.NewForbidden(gr, "cam-1", errors.New("rbac"))), &apiErr) {
		t.Fatal("expected *resource.APIError")
	}
	if apiErr.Code != 403 || apiErr.Reason != "Forbidden" || apiErr.Message == "" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClassify_Nil(t *testing.T) {
	if err := classify(nil); err != nil {
		t.Errorf("classify(nil) = %v, want nil", err)
	}
}

func TestToUnstructuredSpec(t *testing.T) {
	out, err := toUnstructuredSpec(resource.CronTabSpec{CronSpec: "* * */3", Image: "img", Capacity: 7})
	if err != nil {
		t.Fatalf("toUnstructuredSpec() error = %v", err)
	}
	if v, ok := out["capacity"].(int64); !ok || v != 7 {
		t.Errorf("capacity = %#v, want int64(7)", out["capacity"])
	}

	ptrOut, err := toUnstructuredSpec(&resource.CronTabSpec{Image: "img"})
	if err != nil {
		t.Fatalf("toUnstructuredSpec(pointer) error = %v", err)
	}
	if ptrOut["image"] != "img" {
		t.Errorf("image = %#v, want \"img\"", ptrOut["image"])
	}

	invalid := []struct {
		name string
		spec any
	}{
		{name: "string", spec: "not an object"},
		{name: "nil", spec: nil},
		{name: "nil pointer", spec: (*resource.CronTabSpec)(nil)},
		{name: "map", spec: map[string]any{"capacity": 1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := toUnstructuredSpec(tt.spec); !errors.Is(err, resource.ErrInvalidSpec) {
				t.Errorf("toUnstructuredSpec() error = %v, want ErrInvalidSpec", err)
			}
		})
	}
}
