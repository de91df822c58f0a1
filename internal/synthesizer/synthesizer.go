package synthesizer

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/clock"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	"github.com/connexta/keip-webhook/internal/inputs"
	"github.com/connexta/keip-webhook/pkg/function"
	hookv1 "github.com/connexta/keip-webhook/pkg/hook/api/v1"
)

// Synthesizer computes the desired children and status of integration routes.
// It holds no per-request state and is safe for concurrent use.
type Synthesizer struct {
	Config Config
	Clock  clock.PassiveClock
}

func New(cfg Config) *Synthesizer {
	return &Synthesizer{Config: cfg, Clock: clock.RealClock{}}
}

// SyncJSON parses a composite sync request body and reconciles it.
func (s *Synthesizer) SyncJSON(ctx context.Context, body []byte) (*hookv1.SyncResponse, error) {
	in, err := inputs.ParseSync(body)
	if err != nil {
		return nil, err
	}
	return s.Sync(ctx, in)
}

// Sync returns the route's status and its children: the Deployment followed by the actuator Service.
func (s *Synthesizer) Sync(ctx context.Context, in *inputs.Sync) (*hookv1.SyncResponse, error) {
	route := in.Route
	logger := logr.FromContextOrDiscard(ctx).WithValues("integrationRouteName", route.Name, "integrationRouteNamespace", route.Namespace)
	ctx = logr.NewContext(ctx, logger)

	children, err := s.Children(route)
	if err != nil {
		return nil, err
	}
	logDrift(ctx, in.Request.Children.Get(inputs.DeploymentGVK, route.Name), children[0])

	status := ReconcileStatus(route, in.DeploymentStatus, s.Clock)
	logger.V(1).Info("reconciled integration route", "expectedReplicas", status.ExpectedReplicas, "readyReplicas", status.ReadyReplicas)

	return &hookv1.SyncResponse{Status: status, Children: children}, nil
}

// Children returns the encoded Deployment and actuator Service of the route.
func (s *Synthesizer) Children(route *apiv1.IntegrationRoute) ([]*unstructured.Unstructured, error) {
	plan, err := PlanVolumes(&route.Spec)
	if err != nil {
		return nil, err
	}
	env, err := ComposeEnv(route)
	if err != nil {
		return nil, err
	}

	w := function.NewOutputWriter(
		function.WithoutServerFields(),
		function.WithAnnotationsField(),
		function.WithMunger(declaredResources(route.Spec.Resources)),
	)
	err = w.Add(
		NewDeployment(route, plan, env, s.Config),
		NewActuatorService(route),
	)
	if err != nil {
		return nil, fmt.Errorf("encoding children: %w", err)
	}
	return w.Outputs(), nil
}

// declaredResources sets the containers' resources to the block declared on the route, verbatim.
// Without one, resources that encode to an empty object are dropped so the key stays absent.
func declaredResources(declared map[string]any) function.MungeFunc {
	return func(obj *unstructured.Unstructured) {
		containers, found, _ := unstructured.NestedSlice(obj.Object, "spec", "template", "spec", "containers")
		if !found {
			return
		}
		for _, c := range containers {
			container, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if declared != nil {
				container["resources"] = runtime.DeepCopyJSONValue(declared)
				continue
			}
			if res, ok := container["resources"].(map[string]any); ok && len(res) == 0 {
				delete(container, "resources")
			}
		}
		_ = unstructured.SetNestedSlice(obj.Object, containers, "spec", "template", "spec", "containers")
	}
}
