package certmanager

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var CertificateGVK = schema.GroupVersionKind{Group: "cert-manager.io", Version: "v1", Kind: "Certificate"}

// certificate mirrors the subset of the cert-manager.io/v1 Certificate schema this webhook writes.
type certificate struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        certificateMeta `json:"metadata"`
	Spec            certificateSpec `json:"spec"`
}

type certificateMeta struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

type certificateSpec struct {
	CommonName string                      `json:"commonName"`
	DNSNames   []string                    `json:"dnsNames"`
	IssuerRef  issuerRef                   `json:"issuerRef"`
	Keystores  map[string]keystoreSettings `json:"keystores"`
	SecretName string                      `json:"secretName"`
	Subject    subject                     `json:"subject"`
}

type issuerRef struct {
	Group string `json:"group"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

type keystoreSettings struct {
	Create            bool              `json:"create"`
	PasswordSecretRef passwordSecretRef `json:"passwordSecretRef"`
}

type passwordSecretRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type subject struct {
	OrganizationalUnits []string `json:"organizationalUnits,omitempty"`
	Countries           []string `json:"countries,omitempty"`
	Provinces           []string `json:"provinces,omitempty"`
	Localities          []string `json:"localities,omitempty"`
}
