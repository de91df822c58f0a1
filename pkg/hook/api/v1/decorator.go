package v1

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// DecoratorRequest is the body of a decorator sync hook call.
type DecoratorRequest struct {
	Object *unstructured.Unstructured `json:"object"`
}

// DecoratorResponse is the desired state returned from a decorator sync hook call.
// Attachments is always encoded as a list, even when empty.
type DecoratorResponse struct {
	Status      map[string]any               `json:"status"`
	Attachments []*unstructured.Unstructured `json:"attachments"`
}

// NewDecoratorResponse returns a response with an empty status and the given attachments.
// Nil attachments are skipped.
func NewDecoratorResponse(attachments ...*unstructured.Unstructured) *DecoratorResponse {
	resp := &DecoratorResponse{
		Status:      map[string]any{},
		Attachments: []*unstructured.Unstructured{},
	}
	for _, a := range attachments {
		if a != nil {
			resp.Attachments = append(resp.Attachments, a)
		}
	}
	return resp
}
