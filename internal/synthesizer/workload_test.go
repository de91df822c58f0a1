package synthesizer

import (
	"testing"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
)

func newTestDeployment(t *testing.T, route *apiv1.IntegrationRoute, cfg Config) *appsv1.Deployment {
	plan, err := PlanVolumes(&route.Spec)
	require.NoError(t, err)
	env, err := ComposeEnv(route)
	require.NoError(t, err)
	return NewDeployment(route, plan, env, cfg)
}

func TestNewDeploymentMinimal(t *testing.T) {
	deploy := newTestDeployment(t, newMinimalRoute(), Config{IntegrationImage: "keip-integration"})

	assert.Equal(t, "r1", deploy.Name)
	assert.Equal(t, GeneratedLabels("r1"), deploy.Labels)
	assert.Equal(t, map[string]string{LabelInstance: "r1"}, deploy.Spec.Selector.MatchLabels)
	require.NotNil(t, deploy.Spec.Replicas)
	assert.Equal(t, int32(1), *deploy.Spec.Replicas)
	assert.Nil(t, deploy.Spec.Template.Annotations)

	pod := deploy.Spec.Template.Spec
	assert.Equal(t, ServiceAccountName, pod.ServiceAccountName)
	require.Len(t, pod.Containers, 1)

	c := pod.Containers[0]
	assert.Equal(t, ContainerName, c.Name)
	assert.Equal(t, "keip-integration", c.Image)
	assert.Nil(t, c.EnvFrom)
	assert.Equal(t, corev1.ResourceRequirements{}, c.Resources)

	require.Len(t, pod.Volumes, 1)
	require.Len(t, c.VolumeMounts, 1)
	assert.Equal(t, RouteVolumeName, pod.Volumes[0].Name)
	assert.Equal(t, RouteConfigPath, c.VolumeMounts[0].MountPath)

	for _, probe := range []*corev1.Probe{c.LivenessProbe, c.ReadinessProbe, c.StartupProbe} {
		require.NotNil(t, probe)
		assert.Equal(t, intstr.FromInt32(8080), probe.HTTPGet.Port)
		assert.Equal(t, corev1.URISchemeHTTP, probe.HTTPGet.Scheme)
		assert.Equal(t, int32(3), probe.TimeoutSeconds)
	}
	assert.Equal(t, LivenessPath, c.LivenessProbe.HTTPGet.Path)
	assert.Equal(t, int32(3), c.LivenessProbe.FailureThreshold)
	assert.Equal(t, ReadinessPath, c.ReadinessProbe.HTTPGet.Path)
	assert.Equal(t, int32(2), c.ReadinessProbe.FailureThreshold)
	assert.Equal(t, LivenessPath, c.StartupProbe.HTTPGet.Path)
	assert.Equal(t, int32(12), c.StartupProbe.FailureThreshold)
}

func TestNewDeploymentJKSKeystore(t *testing.T) {
	route := newMinimalRoute()
	route.Spec.TLS = &apiv1.TLS{Keystore: &apiv1.Keystore{
		JKS: &apiv1.KeystoreSource{SecretName: "tls", Key: "store.jks", PasswordSecretRef: "keystore-password"},
	}}
	deploy := newTestDeployment(t, route, Config{})

	c := deploy.Spec.Template.Spec.Containers[0]
	for _, probe := range []*corev1.Probe{c.LivenessProbe, c.ReadinessProbe, c.StartupProbe} {
		assert.Equal(t, intstr.FromInt32(8443), probe.HTTPGet.Port)
		assert.Equal(t, corev1.URISchemeHTTPS, probe.HTTPGet.Scheme)
	}

	cfg := newAppConfig(route)
	require.NotNil(t, cfg.Server)
	assert.Equal(t, "JKS", cfg.Server.SSL.KeyStoreType)
	assert.Equal(t, "certificate", cfg.Server.SSL.KeyAlias)

	var password *corev1.EnvVar
	for i := range c.Env {
		if c.Env[i].Name == KeystorePasswordEnvName {
			password = &c.Env[i]
		}
	}
	require.NotNil(t, password)
	assert.Equal(t, "keystore-password", password.ValueFrom.SecretKeyRef.Name)
}

func TestNewDeploymentLabels(t *testing.T) {
	route := newMinimalRoute()
	route.Spec.Labels = map[string]string{
		"team":         "integration",
		LabelName:      "custom-name",
		LabelInstance:  "hijacked",
		LabelManagedBy: "someone-else",
	}
	route.Spec.Annotations = map[string]string{"prometheus.io/scrape": "true"}
	deploy := newTestDeployment(t, route, Config{})

	assert.Equal(t, "integration", deploy.Labels["team"])
	assert.Equal(t, "custom-name", deploy.Labels[LabelName])
	assert.Equal(t, "hijacked", deploy.Labels[LabelInstance])
	assert.Equal(t, "someone-else", deploy.Labels[LabelManagedBy])

	// The selector never follows caller labels
	assert.Equal(t, map[string]string{LabelInstance: "r1"}, deploy.Spec.Selector.MatchLabels)
	assert.Equal(t, "r1", deploy.Spec.Template.Labels[LabelInstance])
	assert.Equal(t, "integration", deploy.Spec.Template.Labels["team"])

	assert.Equal(t, route.Spec.Annotations, deploy.Annotations)
	assert.Equal(t, route.Spec.Annotations, deploy.Spec.Template.Annotations)
}

func TestNewDeploymentOverrides(t *testing.T) {
	route := newMinimalRoute()
	route.Spec.Image = "registry.example.com/custom:1"
	route.Spec.EnvFrom = []corev1.EnvFromSource{{ConfigMapRef: &corev1.ConfigMapEnvSource{
		LocalObjectReference: corev1.LocalObjectReference{Name: "env-config"},
	}}}
	route.Spec.Resources = map[string]any{"limits": map[string]any{"memory": "2Gi"}}
	defaults := &corev1.ResourceRequirements{
		Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("1")},
	}
	deploy := newTestDeployment(t, route, Config{IntegrationImage: "keip-integration", DefaultResources: defaults})

	c := deploy.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "registry.example.com/custom:1", c.Image)
	assert.Equal(t, route.Spec.EnvFrom, c.EnvFrom)

	// Declared resources are left to the output munger, defaults don't apply
	assert.Equal(t, corev1.ResourceRequirements{}, c.Resources)
}

func TestNewDeploymentResourcePolicy(t *testing.T) {
	defaults := &corev1.ResourceRequirements{
		Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("1")},
	}

	deploy := newTestDeployment(t, newMinimalRoute(), Config{})
	assert.Equal(t, corev1.ResourceRequirements{}, deploy.Spec.Template.Spec.Containers[0].Resources)

	deploy = newTestDeployment(t, newMinimalRoute(), Config{DefaultResources: defaults})
	assert.Equal(t, *defaults, deploy.Spec.Template.Spec.Containers[0].Resources)

	// Mutating the output must not leak into the configured defaults
	deploy.Spec.Template.Spec.Containers[0].Resources.Requests[corev1.ResourceCPU] = resource.MustParse("2")
	assert.True(t, defaults.Requests.Cpu().Equal(resource.MustParse("1")))
}

func TestNewActuatorService(t *testing.T) {
	svc := NewActuatorService(newMinimalRoute())
	assert.Equal(t, "r1-actuator", svc.Name)
	assert.Equal(t, map[string]string{"integration-route": "r1", "prometheus-metrics-enabled": "true"}, svc.Labels)
	assert.Equal(t, SelectorLabels("r1"), svc.Spec.Selector)
	require.Len(t, svc.Spec.Ports, 1)
	assert.Equal(t, "http", svc.Spec.Ports[0].Name)
	assert.Equal(t, int32(8080), svc.Spec.Ports[0].Port)
	assert.Equal(t, intstr.FromInt32(8080), svc.Spec.Ports[0].TargetPort)
	assert.Equal(t, corev1.ProtocolTCP, svc.Spec.Ports[0].Protocol)

	svc = NewActuatorService(newFullRoute())
	assert.Equal(t, "testroute-actuator", svc.Name)
	assert.Equal(t, "https", svc.Spec.Ports[0].Name)
	assert.Equal(t, int32(8443), svc.Spec.Ports[0].Port)
}
