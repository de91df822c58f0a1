// Package function provides the object plumbing shared by the webhook's sync functions.
//
// Sync functions are pure: they receive the observed state as a request body and return the desired state.
// This package converts between the loosely typed objects found on the wire and the typed Kubernetes API
// structs the synthesizers work with.
//
// # Reading observed children
//
// Observed children arrive grouped by kind and name. ReadChild converts one of them into a typed struct:
//
//	deploy, found, err := function.ReadChild[appsv1.Deployment](children, appsv1.SchemeGroupVersion.WithKind("Deployment"), "my-route")
//
// # Writing desired objects
//
// An OutputWriter accumulates typed objects, resolves their GVK from the client-go scheme, and encodes them
// as unstructured manifests. Mungers adjust every encoded object:
//
//	w := function.NewOutputWriter(function.WithoutServerFields(), function.WithAnnotationsField())
//	err := w.Add(deployment, service)
//	manifests := w.Outputs()
//
// # One-shot execution
//
// Run reads a request from a reader, calls a HookFunc, and writes the JSON response, which lets the same
// sync functions back both the HTTP transport and a stdin/stdout command.
package function
