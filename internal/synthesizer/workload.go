package synthesizer

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
)

const (
	LabelComponent = "app.kubernetes.io/component"
	LabelManagedBy = "app.kubernetes.io/managed-by"
	LabelName      = "app.kubernetes.io/name"
	LabelInstance  = "app.kubernetes.io/instance"

	ComponentName = "integration-route"
	ManagedBy     = "keip"

	ServiceAccountName = "integrationroute-service"
	ContainerName      = "integration-app"

	HTTPPort  int32 = 8080
	HTTPSPort int32 = 8443

	LivenessPath  = "/actuator/health/liveness"
	ReadinessPath = "/actuator/health/readiness"

	probeTimeoutSeconds = 3
)

// Config is the process-wide configuration consumed by the synthesizer.
// It's read once at startup and never mutated afterwards.
type Config struct {
	// IntegrationImage is used for routes that don't set spec.image.
	IntegrationImage string

	// DefaultResources are injected into routes that declare no resources at all.
	// Nil means absence propagates to the Deployment.
	DefaultResources *corev1.ResourceRequirements
}

// GeneratedLabels are the labels every route's Deployment starts from.
func GeneratedLabels(name string) map[string]string {
	return map[string]string{
		LabelComponent: ComponentName,
		LabelManagedBy: ManagedBy,
		LabelName:      name,
		LabelInstance:  name,
	}
}

// SelectorLabels bind the Deployment and the actuator Service to the route's pods.
// They are never taken from caller-declared labels.
func SelectorLabels(name string) map[string]string {
	return map[string]string{LabelInstance: name}
}

// ActuatorServiceName is the name of the Service exposing a route's management endpoints.
func ActuatorServiceName(name string) string {
	return name + "-actuator"
}

// NewDeployment assembles the Deployment running an integration route.
func NewDeployment(route *apiv1.IntegrationRoute, plan *VolumePlan, env []corev1.EnvVar, cfg Config) *appsv1.Deployment {
	spec := &route.Spec
	labels := OverlayLabels(GeneratedLabels(route.Name), spec.Labels)
	selector := SelectorLabels(route.Name)

	deploy := &appsv1.Deployment{}
	deploy.Name = route.Name
	deploy.Labels = labels
	deploy.Annotations = OverlayLabels(nil, spec.Annotations)
	deploy.Spec.Selector = &metav1.LabelSelector{MatchLabels: selector}
	deploy.Spec.Replicas = ptr.To(spec.Replicas)
	deploy.Spec.Template = newPodTemplate(route, plan, env, cfg)
	deploy.Spec.Template.Labels = OverlayLabels(labels, selector)
	return deploy
}

func newPodTemplate(route *apiv1.IntegrationRoute, plan *VolumePlan, env []corev1.EnvVar, cfg Config) corev1.PodTemplateSpec {
	spec := &route.Spec
	scheme, port := servingEndpoint(spec)

	container := corev1.Container{
		Name:           ContainerName,
		Image:          image(spec, cfg),
		VolumeMounts:   plan.Mounts,
		Env:            env,
		LivenessProbe:  newProbe(LivenessPath, scheme, port, 3),
		ReadinessProbe: newProbe(ReadinessPath, scheme, port, 2),
		StartupProbe:   newProbe(LivenessPath, scheme, port, 12),
	}
	if len(spec.EnvFrom) > 0 {
		container.EnvFrom = spec.EnvFrom
	}
	// Declared resources are copied in as-is once encoded, see declaredResources.
	if spec.Resources == nil && cfg.DefaultResources != nil {
		container.Resources = *cfg.DefaultResources.DeepCopy()
	}

	tmpl := corev1.PodTemplateSpec{}
	if len(spec.Annotations) > 0 {
		tmpl.Annotations = OverlayLabels(nil, spec.Annotations)
	}
	tmpl.Spec.ServiceAccountName = ServiceAccountName
	tmpl.Spec.Containers = []corev1.Container{container}
	tmpl.Spec.Volumes = plan.Volumes
	return tmpl
}

// NewActuatorService exposes the route's management port for metrics scraping.
func NewActuatorService(route *apiv1.IntegrationRoute) *corev1.Service {
	scheme, port := servingEndpoint(&route.Spec)

	svc := &corev1.Service{}
	svc.Name = ActuatorServiceName(route.Name)
	svc.Labels = map[string]string{
		"integration-route":          route.Name,
		"prometheus-metrics-enabled": "true",
	}
	svc.Spec.Selector = SelectorLabels(route.Name)
	svc.Spec.Ports = []corev1.ServicePort{{
		Name:       portName(scheme),
		Port:       port,
		Protocol:   corev1.ProtocolTCP,
		TargetPort: intstr.FromInt32(port),
	}}
	return svc
}

// servingEndpoint serves HTTPS on 8443 if and only if a keystore is configured.
func servingEndpoint(spec *apiv1.IntegrationRouteSpec) (corev1.URIScheme, int32) {
	if spec.HasKeystore() {
		return corev1.URISchemeHTTPS, HTTPSPort
	}
	return corev1.URISchemeHTTP, HTTPPort
}

func portName(scheme corev1.URIScheme) string {
	if scheme == corev1.URISchemeHTTPS {
		return "https"
	}
	return "http"
}

func newProbe(path string, scheme corev1.URIScheme, port, failureThreshold int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path:   path,
				Port:   intstr.FromInt32(port),
				Scheme: scheme,
			},
		},
		FailureThreshold: failureThreshold,
		TimeoutSeconds:   probeTimeoutSeconds,
	}
}

func image(spec *apiv1.IntegrationRouteSpec, cfg Config) string {
	if spec.Image != "" {
		return spec.Image
	}
	return cfg.IntegrationImage
}
