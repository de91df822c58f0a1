package synthesizer

import (
	"context"
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// logDrift logs the merge patch that would take the observed Deployment to the desired one.
// It's debug output only: the caller owns diffing and applying.
func logDrift(ctx context.Context, observed, desired *unstructured.Unstructured) {
	logger := logr.FromContextOrDiscard(ctx)
	if !logger.V(1).Enabled() {
		return
	}
	if observed == nil {
		logger.V(1).Info("no deployment observed yet")
		return
	}

	patch, err := driftPatch(observed, desired)
	if err != nil {
		logger.Error(err, "computing deployment drift")
		return
	}
	logger.V(1).Info("deployment drift", "patch", string(patch))
}

// driftPatch returns the JSON merge patch from observed to desired, ignoring observed status.
func driftPatch(observed, desired *unstructured.Unstructured) ([]byte, error) {
	current := observed.DeepCopy()
	unstructured.RemoveNestedField(current.Object, "status")

	cur, err := json.Marshal(current.Object)
	if err != nil {
		return nil, err
	}
	next, err := json.Marshal(desired.Object)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(cur, next)
}
