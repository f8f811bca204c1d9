// Package kubetest provides a kube.Store backed by client-go's fake dynamic
// client, pre-registered with the Asset and CronTab list kinds.
package kubetest

import (
	"context"
	"testing"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/nerrad567/deviceservice/internal/infrastructure/kube"
	"github.com/nerrad567/deviceservice/internal/resource"
)

// NewStore returns a Store over a fake cluster seeded with objects, and the
// fake client so tests can inspect actions or prepend reactors.
func NewStore(t *testing.T, objects ...runtime.Object) (*kube.Store, *dynamicfake.FakeDynamicClient) {
	t.Helper()

	listKinds := map[schema.GroupVersionResource]string{
		resource.KindAsset.GroupVersionResource():   resource.KindAsset.ListKind(),
		resource.KindCronTab.GroupVersionResource(): resource.KindCronTab.ListKind(),
	}
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds, objects...)
	return kube.NewStore(client), client
}

// Object builds an unstructured object of kind with the given spec map.
func Object(kind resource.Kind, namespace, name string, spec map[string]any) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": kind.APIVersion(),
		"kind":       kind.Kind,
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
		"spec": spec,
	}}
}

// CronTab builds a CronTab object.
func CronTab(namespace, name string, spec resource.CronTabSpec) *unstructured.Unstructured {
	return Object(resource.KindCronTab, namespace, name, map[string]any{
		"cronSpec": spec.CronSpec,
		"image":    spec.Image,
		"capacity": int64(spec.Capacity),
	})
}

// Asset builds an Asset object carrying only the required endpoint profile.
func Asset(namespace, name, endpointProfileURI string) *unstructured.Unstructured {
	return Object(resource.KindAsset, namespace, name, map[string]any{
		"assetEndpointProfileUri": endpointProfileURI,
	})
}

// CountVerb returns how many recorded actions used verb against kind.
func CountVerb(client *dynamicfake.FakeDynamicClient, verb string, kind resource.Kind) int {
	n := 0
	for _, action := range client.Actions() {
		if action.GetVerb() == verb && action.GetResource() == kind.GroupVersionResource() {
			n++
		}
	}
	return n
}

// FailVerb makes every verb call against kind return err.
func FailVerb(client *dynamicfake.FakeDynamicClient, verb string, kind resource.Kind, err error) {
	client.PrependReactor(verb, kind.Resource, func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, err
	})
}

// GetCronTab reads a CronTab spec back through the store, failing the test on error.
func GetCronTab(t *testing.T, store *kube.Store, namespace, name string) resource.CronTabSpec {
	t.Helper()

	var spec resource.CronTabSpec
	if err := store.Find(context.Background(), resource.KindCronTab, namespace, name, &spec); err != nil {
		t.Fatalf("Find crontab %s/%s: %v", namespace, name, err)
	}
	return spec
}
