package v1

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// SyncRequest is the body of a composite sync hook call.
type SyncRequest struct {
	// Parent is the resource being reconciled, including its last persisted status.
	Parent *unstructured.Unstructured `json:"parent"`

	// Children are the currently observed children grouped by ChildKey and then by name.
	Children ChildMap `json:"children"`
}

// SyncResponse is the desired state returned from a composite sync hook call.
type SyncResponse struct {
	// Status replaces the parent's status subresource.
	Status any `json:"status"`

	// Children is the complete set of desired children. Observed children missing from
	// this list are deleted by the control loop.
	Children []*unstructured.Unstructured `json:"children"`
}
