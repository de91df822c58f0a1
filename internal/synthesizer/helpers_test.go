package synthesizer

import (
	apiv1 "github.com/connexta/keip-webhook/api/v1"
	corev1 "k8s.io/api/core/v1"
)

func newMinimalRoute() *apiv1.IntegrationRoute {
	route := &apiv1.IntegrationRoute{}
	route.Name = "r1"
	route.Spec.RouteConfigMap = "r1-xml"
	route.Spec.Replicas = 1
	route.Spec.Normalize()
	return route
}

func newFullRoute() *apiv1.IntegrationRoute {
	route := newMinimalRoute()
	route.Name = "testroute"
	route.Namespace = "testnamespace"
	route.Spec.RouteConfigMap = "testroute-xml"
	route.Spec.Replicas = 2
	route.Spec.SecretSources = []string{"secret1", "secret2"}
	route.Spec.PersistentVolumeClaims = []apiv1.PersistentVolumeClaimMount{{ClaimName: "testclaim", MountPath: "/mnt/data"}}
	route.Spec.ConfigMaps = []apiv1.ConfigMapMount{{Name: "extra-config", MountPath: "/etc/extra"}}
	route.Spec.PropSources = []apiv1.PropSource{{Name: "test-props", Labels: map[string]string{"app": "testroute"}}}
	route.Spec.TLS = &apiv1.TLS{
		Truststore: &apiv1.Truststore{
			JKS: &apiv1.TruststoreSource{ConfigMapName: "test-truststore", Key: "trust.jks"},
		},
		Keystore: &apiv1.Keystore{
			JKS: &apiv1.KeystoreSource{SecretName: "test-tls", Key: "store.jks", PasswordSecretRef: "keystore-password"},
		},
	}
	route.Spec.Env = []corev1.EnvVar{{Name: "EXTRA", Value: "1"}}
	return route
}

func mountNames(mounts []corev1.VolumeMount) []string {
	names := make([]string, len(mounts))
	for i, m := range mounts {
		names[i] = m.Name
	}
	return names
}

func volumeNames(vols []corev1.Volume) []string {
	names := make([]string, len(vols))
	for i, v := range vols {
		names[i] = v.Name
	}
	return names
}

func envNames(env []corev1.EnvVar) []string {
	names := make([]string, len(env))
	for i, e := range env {
		names[i] = e.Name
	}
	return names
}
