package resource

import "k8s.io/apimachinery/pkg/runtime/schema"

// Kind identifies a managed resource type on the API server.
type Kind struct {
	Group    string
	Version  string
	Resource string // plural, lower-case (used in URLs)
	Kind     string // singular, CamelCase (used in object bodies)
}

// GroupVersionResource returns the dynamic-client coordinates of the kind.
func (k Kind) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: k.Group, Version: k.Version, Resource: k.Resource}
}

// APIVersion returns the "group/version" string written into object bodies.
func (k Kind) APIVersion() string {
	return k.Group + "/" + k.Version
}

// ListKind returns the kind name of the list type, e.g. "AssetList".
func (k Kind) ListKind() string {
	return k.Kind + "List"
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return k.Resource + "." + k.Group
}

// Managed kinds.
var (
	KindAsset = Kind{
		Group:    "deviceregistry.microsoft.com",
		Version:  "v1beta1",
		Resource: "assets",
		Kind:     "Asset",
	}

	KindCronTab = Kind{
		Group:    "stable.example.com",
		Version:  "v1",
		Resource: "crontabs",
		Kind:     "CronTab",
	}
)
