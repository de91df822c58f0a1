package synthesizer

import (
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
)

// ReconcileStatus computes the route's status from its spec, the status it last persisted,
// and the observed Deployment status (nil when there is none yet).
func ReconcileStatus(route *apiv1.IntegrationRoute, observed *appsv1.DeploymentStatus, clk clock.PassiveClock) apiv1.IntegrationRouteStatus {
	status := apiv1.IntegrationRouteStatus{ExpectedReplicas: route.Spec.Replicas}
	if observed == nil {
		return status
	}

	status.ReadyReplicas = observed.ReadyReplicas
	status.RunningReplicas = observed.Replicas
	for _, cond := range observed.Conditions {
		if cond.Type == appsv1.DeploymentAvailable {
			status.Conditions = append(status.Conditions, fromDeploymentCondition(cond))
		}
	}

	isReady := status.ReadyReplicas == status.ExpectedReplicas
	status.Conditions = append(status.Conditions, ReadyCondition(&route.Status, isReady, clk))
	return status
}

// ReadyCondition returns the route's Ready condition.
// The previous condition is returned as-is when its state already matches, so the
// transition time only moves when readiness actually flips.
func ReadyCondition(previous *apiv1.IntegrationRouteStatus, isReady bool, clk clock.PassiveClock) apiv1.Condition {
	state := metav1.ConditionFalse
	if isReady {
		state = metav1.ConditionTrue
	}

	if prev := previous.FindCondition(apiv1.ReadyConditionType); prev != nil && prev.Status == state {
		return *prev
	}

	cond := apiv1.Condition{
		Type:               apiv1.ReadyConditionType,
		Status:             state,
		LastTransitionTime: metav1.NewTime(clk.Now()),
	}
	if isReady {
		cond.Reason = apiv1.ReadyReason
		cond.Message = apiv1.ReadyMessage
	} else {
		cond.Reason = apiv1.NotReadyReason
		cond.Message = apiv1.NotReadyMessage
	}
	return cond
}

func fromDeploymentCondition(c appsv1.DeploymentCondition) apiv1.Condition {
	cond := apiv1.Condition{
		Type:               string(c.Type),
		Status:             metav1.ConditionStatus(c.Status),
		LastTransitionTime: c.LastTransitionTime,
		Reason:             c.Reason,
		Message:            c.Message,
	}
	if !c.LastUpdateTime.IsZero() {
		lastUpdate := c.LastUpdateTime
		cond.LastUpdateTime = &lastUpdate
	}
	return cond
}
