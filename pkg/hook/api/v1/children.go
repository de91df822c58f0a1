package v1

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ChildMap holds observed children keyed by ChildKey and then by object name.
type ChildMap map[string]map[string]*unstructured.Unstructured

// ChildKey returns the key used to group children of the given kind, e.g. "Deployment.apps/v1" or "Service.v1".
func ChildKey(gvk schema.GroupVersionKind) string {
	if gvk.Group == "" {
		return gvk.Kind + "." + gvk.Version
	}
	return gvk.Kind + "." + gvk.Group + "/" + gvk.Version
}

// Get returns the observed child of the given kind and name, or nil.
func (c ChildMap) Get(gvk schema.GroupVersionKind, name string) *unstructured.Unstructured {
	return c[ChildKey(gvk)][name]
}

// Len returns the total number of observed children across all kinds.
func (c ChildMap) Len() int {
	var n int
	for _, byName := range c {
		n += len(byName)
	}
	return n
}
