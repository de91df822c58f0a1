package v1

import (
	"encoding/json"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	ReadyConditionType = "Ready"

	ReadyReason    = "ReplicasReady"
	NotReadyReason = "ReplicasNotReady"

	ReadyMessage    = "All IntegrationRoute pod replicas are ready"
	NotReadyMessage = "Some IntegrationRoute pod replicas are not ready"
)

type IntegrationRouteStatus struct {
	ExpectedReplicas int32       `json:"expectedReplicas"`
	ReadyReplicas    int32       `json:"readyReplicas"`
	RunningReplicas  int32       `json:"runningReplicas"`
	Conditions       []Condition `json:"conditions,omitempty"`
}

// Condition is a superset of the condition shapes found on the route and on its Deployment,
// so Deployment conditions can be carried over without losing fields.
type Condition struct {
	Type               string                 `json:"type"`
	Status             metav1.ConditionStatus `json:"status"`
	ObservedGeneration int64                  `json:"observedGeneration,omitempty"`
	LastUpdateTime     *metav1.Time           `json:"lastUpdateTime,omitempty"`
	LastTransitionTime metav1.Time            `json:"lastTransitionTime"`
	Reason             string                 `json:"reason,omitempty"`
	Message            string                 `json:"message,omitempty"`

	// raw is the condition as it was persisted. When set it's encoded in place of the fields above.
	raw map[string]any
}

// ConditionFromMap reads a condition persisted on the route's status. The map is retained and encoded
// back unchanged, so keys and timestamp precision survive a round trip.
// The boolean is false when the map lacks a type or status, or its lastTransitionTime isn't RFC 3339.
func ConditionFromMap(m map[string]any) (Condition, bool) {
	conditionType, _ := m["type"].(string)
	status, _ := m["status"].(string)
	if conditionType == "" || status == "" {
		return Condition{}, false
	}
	ts, _ := m["lastTransitionTime"].(string)
	transition, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Condition{}, false
	}

	cond := Condition{
		Type:               conditionType,
		Status:             metav1.ConditionStatus(status),
		LastTransitionTime: metav1.NewTime(transition),
		raw:                m,
	}
	cond.Reason, _ = m["reason"].(string)
	cond.Message, _ = m["message"].(string)
	return cond, true
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return json.Marshal(c.raw)
	}
	type condition Condition
	return json.Marshal(condition(c))
}

// FindCondition returns the first condition of the given type, or nil.
func (s *IntegrationRouteStatus) FindCondition(conditionType string) *Condition {
	for i := range s.Conditions {
		if s.Conditions[i].Type == conditionType {
			return &s.Conditions[i]
		}
	}
	return nil
}
