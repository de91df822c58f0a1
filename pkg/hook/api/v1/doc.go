// Package v1 defines the wire format of the sync hooks served by the webhook.
//
// Two contracts are supported:
//
//   - Composite sync: the control loop posts the parent resource and the children it currently observes,
//     and receives the parent's desired status plus the full set of desired children.
//   - Decorator sync: the control loop posts a single object and receives the attachments that should
//     exist alongside it.
//
// The control loop owns all cluster I/O. Responses describe desired state only.
package v1
