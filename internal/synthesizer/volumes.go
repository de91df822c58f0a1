package synthesizer

import (
	"path"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	"github.com/connexta/keip-webhook/internal/inputs"
	corev1 "k8s.io/api/core/v1"
)

const (
	SecretsRoot     = "/etc/secrets"
	TruststorePath  = "/etc/cabundle"
	KeystorePath    = "/etc/keystore"
	RouteConfigPath = "/var/spring/xml"

	RouteVolumeName      = "integration-route-config"
	TruststoreVolumeName = "truststore"
	KeystoreVolumeName   = "keystore"
)

// VolumePlan holds a pod's volumes and the integration container's mounts.
// Both are ordered: route definition, secrets, claims, config maps, truststore, keystore.
type VolumePlan struct {
	Volumes []corev1.Volume
	Mounts  []corev1.VolumeMount
}

// PlanVolumes derives the volumes and mounts of an integration route pod.
func PlanVolumes(spec *apiv1.IntegrationRouteSpec) (*VolumePlan, error) {
	if spec.RouteConfigMap == "" {
		return nil, inputs.MissingField("spec", "routeConfigMap")
	}

	plan := &VolumePlan{}
	plan.add(
		corev1.Volume{
			Name: RouteVolumeName,
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: spec.RouteConfigMap},
				},
			},
		},
		corev1.VolumeMount{Name: RouteVolumeName, MountPath: RouteConfigPath},
	)

	for _, secret := range spec.SecretSources {
		plan.add(
			corev1.Volume{
				Name:         secret,
				VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{SecretName: secret}},
			},
			corev1.VolumeMount{Name: secret, ReadOnly: true, MountPath: path.Join(SecretsRoot, secret)},
		)
	}

	for _, pvc := range spec.PersistentVolumeClaims {
		plan.add(
			corev1.Volume{
				Name: pvc.ClaimName,
				VolumeSource: corev1.VolumeSource{
					PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: pvc.ClaimName},
				},
			},
			corev1.VolumeMount{Name: pvc.ClaimName, MountPath: pvc.MountPath},
		)
	}

	for _, cm := range spec.ConfigMaps {
		plan.add(
			corev1.Volume{
				Name: cm.Name,
				VolumeSource: corev1.VolumeSource{
					ConfigMap: &corev1.ConfigMapVolumeSource{
						LocalObjectReference: corev1.LocalObjectReference{Name: cm.Name},
					},
				},
			},
			corev1.VolumeMount{Name: cm.Name, MountPath: cm.MountPath},
		)
	}

	if spec.HasTruststore() {
		_, src := spec.TLS.Truststore.Source()
		plan.add(
			corev1.Volume{
				Name: TruststoreVolumeName,
				VolumeSource: corev1.VolumeSource{
					ConfigMap: &corev1.ConfigMapVolumeSource{
						LocalObjectReference: corev1.LocalObjectReference{Name: src.ConfigMapName},
						Items:                []corev1.KeyToPath{{Key: src.Key, Path: src.Key}},
					},
				},
			},
			corev1.VolumeMount{Name: TruststoreVolumeName, ReadOnly: true, MountPath: TruststorePath},
		)
	}

	if spec.HasKeystore() {
		_, src := spec.TLS.Keystore.Source()
		plan.add(
			corev1.Volume{
				Name: KeystoreVolumeName,
				VolumeSource: corev1.VolumeSource{
					Secret: &corev1.SecretVolumeSource{
						SecretName: src.SecretName,
						Items:      []corev1.KeyToPath{{Key: src.Key, Path: src.Key}},
					},
				},
			},
			corev1.VolumeMount{Name: KeystoreVolumeName, ReadOnly: true, MountPath: KeystorePath},
		)
	}

	return plan, nil
}

func (p *VolumePlan) add(vol corev1.Volume, mount corev1.VolumeMount) {
	p.Volumes = append(p.Volumes, vol)
	p.Mounts = append(p.Mounts, mount)
}
