// Package synthesizer computes the desired state of an IntegrationRoute: its Deployment, its actuator Service,
// and its status.
//
// Every function in this package is pure. Given the same parsed request (and the same clock reading) the
// returned manifests are byte-identical, which is what keeps the control loop from observing spurious diffs.
package synthesizer
