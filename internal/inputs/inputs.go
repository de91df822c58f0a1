// Package inputs is the typed view over hook request bodies.
//
// Parsing fails fast: a body that isn't structured data yields ErrMalformedInput, and a required key that is
// absent yields a *MissingFieldError naming it. Once parsed, optional collections on the route spec are
// present-but-empty so downstream code never has to distinguish nil from empty.
package inputs

import (
	"errors"
	"fmt"
	"maps"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	"github.com/connexta/keip-webhook/pkg/function"
	hookv1 "github.com/connexta/keip-webhook/pkg/hook/api/v1"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
)

var DeploymentGVK = appsv1.SchemeGroupVersion.WithKind("Deployment")

// Sync is the typed view of a composite sync request.
type Sync struct {
	Request *hookv1.SyncRequest
	Route   *apiv1.IntegrationRoute

	// Deployment is the observed child Deployment, nil when none has been observed yet.
	Deployment *appsv1.Deployment

	// DeploymentStatus is nil when no Deployment was observed or it doesn't carry a status yet.
	DeploymentStatus *appsv1.DeploymentStatus
}

// Decorator is the typed view of a decorator sync request.
type Decorator struct {
	Request *hookv1.DecoratorRequest
	Route   *apiv1.IntegrationRoute
}

// ParseSync parses the body of a composite sync hook call.
func ParseSync(data []byte) (*Sync, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}

	parent, err := requireObject(raw, "parent")
	if err != nil {
		return nil, err
	}
	children, err := parseChildren(raw)
	if err != nil {
		return nil, err
	}

	return NewSync(&hookv1.SyncRequest{
		Parent:   &unstructured.Unstructured{Object: parent},
		Children: children,
	})
}

// NewSync validates an already decoded sync request and converts it to its typed view.
func NewSync(req *hookv1.SyncRequest) (*Sync, error) {
	if req.Parent == nil {
		return nil, MissingField("parent")
	}
	if req.Children == nil {
		return nil, MissingField("children")
	}

	parent := req.Parent.Object
	for _, path := range [][]string{
		{"metadata"},
		{"metadata", "name"},
		{"spec"},
		{"spec", "routeConfigMap"},
		{"spec", "replicas"},
	} {
		if err := requireField(parent, "parent", path...); err != nil {
			return nil, err
		}
	}
	if err := requireStoreFormat(parent, "parent", "truststore"); err != nil {
		return nil, err
	}
	if err := requireStoreFormat(parent, "parent", "keystore"); err != nil {
		return nil, err
	}

	route, err := convertRoute(req.Parent)
	if err != nil {
		return nil, err
	}
	if route.Spec.RouteConfigMap == "" {
		return nil, MissingField("parent", "spec", "routeConfigMap")
	}
	if (len(route.Spec.PropSources) > 0 || len(route.Spec.SecretSources) > 0) && route.Namespace == "" {
		return nil, MissingField("parent", "metadata", "namespace")
	}

	s := &Sync{Request: req, Route: route}
	s.Deployment, _, err = function.ReadChild[appsv1.Deployment](req.Children, DeploymentGVK, route.Name)
	if err != nil {
		return nil, errors.Join(ErrMalformedInput, fmt.Errorf("observed deployment %q: %w", route.Name, err))
	}
	if s.Deployment == nil {
		return s, nil
	}

	observed := req.Children.Get(DeploymentGVK, route.Name)
	if status, ok := observed.Object["status"].(map[string]any); ok && len(status) > 0 {
		s.DeploymentStatus = &s.Deployment.Status
	}
	return s, nil
}

// ParseDecorator parses the body of a decorator sync hook call.
func ParseDecorator(data []byte) (*Decorator, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}

	obj, err := requireObject(raw, "object")
	if err != nil {
		return nil, err
	}
	return NewDecorator(&hookv1.DecoratorRequest{Object: &unstructured.Unstructured{Object: obj}})
}

// NewDecorator validates an already decoded decorator request and converts it to its typed view.
func NewDecorator(req *hookv1.DecoratorRequest) (*Decorator, error) {
	if req.Object == nil {
		return nil, MissingField("object")
	}

	for _, path := range [][]string{
		{"metadata"},
		{"metadata", "name"},
		{"metadata", "namespace"},
	} {
		if err := requireField(req.Object.Object, "object", path...); err != nil {
			return nil, err
		}
	}

	route, err := convertRoute(req.Object)
	if err != nil {
		return nil, err
	}
	return &Decorator{Request: req, Route: route}, nil
}

func decode(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if err := utiljson.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrMalformedInput, err)
	}
	return raw, nil
}

func requireObject(raw map[string]any, key string) (map[string]any, error) {
	val, ok := raw[key]
	if !ok || val == nil {
		return nil, MissingField(key)
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrMalformedInput, fmt.Errorf("%q is %T, not an object", key, val))
	}
	return obj, nil
}

func parseChildren(raw map[string]any) (hookv1.ChildMap, error) {
	val, ok := raw["children"]
	if !ok {
		return nil, MissingField("children")
	}
	children := hookv1.ChildMap{}
	if val == nil {
		return children, nil
	}

	byKind, ok := val.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrMalformedInput, fmt.Errorf("children is %T, not an object", val))
	}
	for kind, group := range byKind {
		if group == nil {
			continue
		}
		byName, ok := group.(map[string]any)
		if !ok {
			return nil, errors.Join(ErrMalformedInput, fmt.Errorf("children %q is %T, not an object", kind, group))
		}
		children[kind] = make(map[string]*unstructured.Unstructured, len(byName))
		for name, obj := range byName {
			m, ok := obj.(map[string]any)
			if !ok {
				return nil, errors.Join(ErrMalformedInput, fmt.Errorf("child %s %q is %T, not an object", kind, name, obj))
			}
			children[kind][name] = &unstructured.Unstructured{Object: m}
		}
	}
	return children, nil
}

func requireField(obj map[string]any, root string, path ...string) error {
	val, found, err := unstructured.NestedFieldNoCopy(obj, path...)
	if err != nil {
		return errors.Join(ErrMalformedInput, err)
	}
	if !found || val == nil {
		return MissingField(append([]string{root}, path...)...)
	}
	return nil
}

// requireStoreFormat checks that a declared trust/key store names one of the supported formats.
// pkcs12 is reported as missing since it's the fallback when jks isn't declared.
func requireStoreFormat(obj map[string]any, root, store string) error {
	m, found, err := unstructured.NestedMap(obj, "spec", "tls", store)
	if err != nil {
		return errors.Join(ErrMalformedInput, err)
	}
	if !found || m == nil {
		return nil
	}
	if m[string(apiv1.StoreTypeJKS)] != nil || m[string(apiv1.StoreTypePKCS12)] != nil {
		return nil
	}
	return MissingField(root, "spec", "tls", store, string(apiv1.StoreTypePKCS12))
}

// convertRoute decodes the route's spec and metadata. The persisted status and the resources block are
// read from the raw object instead: both are handed back verbatim, and a status the webhook can't read
// must not block reconciliation.
func convertRoute(u *unstructured.Unstructured) (*apiv1.IntegrationRoute, error) {
	obj := maps.Clone(u.Object)
	delete(obj, "status")

	route, err := function.Convert[apiv1.IntegrationRoute](&unstructured.Unstructured{Object: obj})
	if err != nil {
		return nil, errors.Join(ErrMalformedInput, err)
	}
	route.Spec.Normalize()

	resources, found, err := unstructured.NestedFieldNoCopy(u.Object, "spec", "resources")
	if err != nil {
		return nil, errors.Join(ErrMalformedInput, err)
	}
	if found && resources != nil {
		m, ok := resources.(map[string]any)
		if !ok {
			return nil, errors.Join(ErrMalformedInput, fmt.Errorf("spec.resources is %T, not an object", resources))
		}
		route.Spec.Resources = m
	}

	route.Status = previousStatus(u.Object)
	return route, nil
}

// previousStatus returns the well-formed conditions last persisted on the route.
// Anything else in the persisted status is recomputed on every sync and isn't read.
func previousStatus(obj map[string]any) apiv1.IntegrationRouteStatus {
	status := apiv1.IntegrationRouteStatus{}
	conditions, _, _ := unstructured.NestedFieldNoCopy(obj, "status", "conditions")
	list, _ := conditions.([]any)
	for _, c := range list {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if cond, ok := apiv1.ConditionFromMap(m); ok {
			status.Conditions = append(status.Conditions, cond)
		}
	}
	return status
}
