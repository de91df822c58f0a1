package v1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// IntegrationRoute is the parent resource reconciled by the sync hook.
// It describes a single Spring Integration route and the configuration sources mounted into its pods.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Ready",type=string,JSONPath=`.status.conditions[?(@.type=="Ready")].status`
// +kubebuilder:printcolumn:name="Replicas",type=integer,JSONPath=`.status.readyReplicas`
type IntegrationRoute struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   IntegrationRouteSpec   `json:"spec,omitempty"`
	Status IntegrationRouteStatus `json:"status,omitempty"`
}

type IntegrationRouteSpec struct {
	// Name of the ConfigMap holding the route's XML definition.
	// Every route mounts exactly one route definition.
	RouteConfigMap string `json:"routeConfigMap"`

	Replicas int32 `json:"replicas"`

	// Container image override. The webhook's configured default image is used when empty.
	//
	// +optional
	Image string `json:"image,omitempty"`

	// Secrets mounted under the secrets root and exposed as Spring property sources.
	SecretSources []string `json:"secretSources,omitempty"`

	PersistentVolumeClaims []PersistentVolumeClaimMount `json:"persistentVolumeClaims,omitempty"`
	ConfigMaps             []ConfigMapMount             `json:"configMaps,omitempty"`

	// Selects ConfigMap-backed property sources for Spring Cloud Kubernetes.
	PropSources []PropSource `json:"propSources,omitempty"`

	TLS *TLS `json:"tls,omitempty"`

	// Merged over the generated labels. Caller values win on key collision.
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`

	// Resources is the container resources block exactly as declared, nil when absent.
	// It's read from the raw object rather than decoded so quantities keep their declared form.
	Resources map[string]any `json:"-"`

	Env     []corev1.EnvVar        `json:"env,omitempty"`
	EnvFrom []corev1.EnvFromSource `json:"envFrom,omitempty"`
}

type PersistentVolumeClaimMount struct {
	ClaimName string `json:"claimName"`
	MountPath string `json:"mountPath"`
}

type ConfigMapMount struct {
	Name      string `json:"name"`
	MountPath string `json:"mountPath"`
}

type PropSource struct {
	Name   string            `json:"name,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

type TLS struct {
	Truststore *Truststore `json:"truststore,omitempty"`
	Keystore   *Keystore   `json:"keystore,omitempty"`
}

// Truststore is a CA bundle read from a ConfigMap. Exactly one of JKS or PKCS12 is expected.
type Truststore struct {
	JKS    *TruststoreSource `json:"jks,omitempty"`
	PKCS12 *TruststoreSource `json:"pkcs12,omitempty"`
}

type TruststoreSource struct {
	ConfigMapName string `json:"configMapName"`
	Key           string `json:"key"`
}

// Keystore holds the server certificate, read from a Secret. Exactly one of JKS or PKCS12 is expected.
type Keystore struct {
	JKS    *KeystoreSource `json:"jks,omitempty"`
	PKCS12 *KeystoreSource `json:"pkcs12,omitempty"`
}

type KeystoreSource struct {
	SecretName string `json:"secretName"`
	Key        string `json:"key"`

	// Name of the Secret holding the store password under the "password" key.
	PasswordSecretRef string `json:"passwordSecretRef"`

	// +optional
	Alias string `json:"alias,omitempty"`
}

// StoreType identifies the on-disk format of a key or trust store.
type StoreType string

const (
	StoreTypeJKS    StoreType = "jks"
	StoreTypePKCS12 StoreType = "pkcs12"
)

// Source returns the configured truststore format. JKS takes precedence when both are set.
func (t *Truststore) Source() (StoreType, *TruststoreSource) {
	if t.JKS != nil {
		return StoreTypeJKS, t.JKS
	}
	return StoreTypePKCS12, t.PKCS12
}

// Source returns the configured keystore format. JKS takes precedence when both are set.
func (k *Keystore) Source() (StoreType, *KeystoreSource) {
	if k.JKS != nil {
		return StoreTypeJKS, k.JKS
	}
	return StoreTypePKCS12, k.PKCS12
}

// HasKeystore is true when the route serves HTTPS.
func (s *IntegrationRouteSpec) HasKeystore() bool {
	return s.TLS != nil && s.TLS.Keystore != nil
}

// HasTruststore is true when the route trusts a custom CA bundle.
func (s *IntegrationRouteSpec) HasTruststore() bool {
	return s.TLS != nil && s.TLS.Truststore != nil
}

// Normalize replaces absent optional collections with empty ones.
func (s *IntegrationRouteSpec) Normalize() {
	if s.SecretSources == nil {
		s.SecretSources = []string{}
	}
	if s.PersistentVolumeClaims == nil {
		s.PersistentVolumeClaims = []PersistentVolumeClaimMount{}
	}
	if s.ConfigMaps == nil {
		s.ConfigMaps = []ConfigMapMount{}
	}
	if s.PropSources == nil {
		s.PropSources = []PropSource{}
	}
	if s.Labels == nil {
		s.Labels = map[string]string{}
	}
	if s.Annotations == nil {
		s.Annotations = map[string]string{}
	}
	if s.Env == nil {
		s.Env = []corev1.EnvVar{}
	}
	if s.EnvFrom == nil {
		s.EnvFrom = []corev1.EnvFromSource{}
	}
}
