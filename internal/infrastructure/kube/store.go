package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"

	"github.com/nerrad567/deviceservice/internal/resource"
)

// Store implements resource.Store on top of the dynamic client.
//
// Thread Safety: safe for concurrent use; it holds no mutable state.
type Store struct {
	client dynamic.Interface
}

// NewStore wraps a dynamic client.
func NewStore(client dynamic.Interface) *Store {
	return &Store{client: client}
}

var _ resource.Store = (*Store)(nil)

func (s *Store) resource(kind resource.Kind, namespace string) dynamic.ResourceInterface {
	return s.client.Resource(kind.GroupVersionResource()).Namespace(namespace)
}

// Find loads the spec of namespace/name into into.
func (s *Store) Find(ctx context.Context, kind resource.Kind, namespace, name string, into any) error {
	obj, err := s.resource(kind, namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return classify(err)
	}

	spec, found, err := unstructured.NestedMap(obj.Object, "spec")
	if err != nil {
		return fmt.Errorf("%w: reading %s %s/%s: %w", resource.ErrInvalidSpec, kind.Kind, namespace, name, err)
	}
	if !found {
		return nil
	}

	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(spec, into); err != nil {
		return fmt.Errorf("%w: decoding %s %s/%s: %w", resource.ErrInvalidSpec, kind.Kind, namespace, name, err)
	}
	return nil
}

// Create creates namespace/name with the given spec.
func (s *Store) Create(ctx context.Context, kind resource.Kind, namespace, name string, spec any) error {
	specMap, err := toUnstructuredSpec(spec)
	if err != nil {
		return err
	}

	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": kind.APIVersion(),
		"kind":       kind.Kind,
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
		"spec": specMap,
	}}

	if _, err := s.resource(kind, namespace).Create(ctx, obj, metav1.CreateOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

// Update merge-patches the spec of namespace/name.
//
// The patch carries no resourceVersion, so it is applied unconditionally.
func (s *Store) Update(ctx context.Context, kind resource.Kind, namespace, name string, spec any) error {
	specMap, err := toUnstructuredSpec(spec)
	if err != nil {
		return err
	}

	patch, err := json.Marshal(map[string]any{"spec": specMap})
	if err != nil {
		return fmt.Errorf("%w: %w", resource.ErrInvalidSpec, err)
	}

	if _, err := s.resource(kind, namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

// List returns object names of kind in namespace ("" for all namespaces).
func (s *Store) List(ctx context.Context, kind resource.Kind, namespace string) ([]string, error) {
	return s.listNames(ctx, kind, namespace, 0)
}

// listNames lists at most limit names of kind, or all of them when limit is 0.
func (s *Store) listNames(ctx context.Context, kind resource.Kind, namespace string, limit int64) ([]string, error) {
	list, err := s.resource(kind, namespace).List(ctx, metav1.ListOptions{Limit: limit})
	if err != nil {
		return nil, classify(err)
	}

	names := make([]string, 0, len(list.Items))
	for i := range list.Items {
		names = append(names, list.Items[i].GetName())
	}
	return names, nil
}

// HealthCheck verifies that the API server is reachable and serves every
// given kind, by listing at most one object of each across all namespaces.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - kinds: Resource kinds that must be installed
//
// Returns:
//   - error: nil if healthy, the first failure otherwise
func (s *Store) HealthCheck(ctx context.Context, kinds ...resource.Kind) error {
	for _, kind := range kinds {
		if _, err := s.listNames(ctx, kind, "", 1); err != nil {
			return fmt.Errorf("kube health check for %s: %w", kind, err)
		}
	}
	return nil
}

// toUnstructuredSpec converts a typed spec struct into the map form carried
// by unstructured objects. Integers come out as int64, as the unstructured
// helpers expect.
func toUnstructuredSpec(spec any) (map[string]any, error) {
	v := reflect.ValueOf(spec)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: spec is nil", resource.ErrInvalidSpec)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: spec must be a struct, got %T", resource.ErrInvalidSpec, spec)
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	out, err := runtime.DefaultUnstructuredConverter.ToUnstructured(ptr.Interface())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resource.ErrInvalidSpec, err)
	}
	return out, nil
}
