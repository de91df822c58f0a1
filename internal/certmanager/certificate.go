package certmanager

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	"github.com/connexta/keip-webhook/internal/inputs"
	"github.com/connexta/keip-webhook/internal/synthesizer"
)

const (
	skipReasonIssuerConflict = "IssuerConflict"
	skipReasonNoIssuer       = "NoIssuer"
)

// NewCertificate derives the route's cert-manager Certificate from its annotations.
// A nil certificate without an error means the route doesn't get one.
func (s *Synthesizer) NewCertificate(ctx context.Context, route *apiv1.IntegrationRoute) (*unstructured.Unstructured, error) {
	logger := logr.FromContextOrDiscard(ctx)
	annotations := route.Annotations
	if !hasCertManagerAnnotations(annotations) {
		logger.V(1).Info("route has no cert-manager annotations - skipping certificate")
		return nil, nil
	}

	ref, ok := s.issuerRef(logger, annotations)
	if !ok {
		return nil, nil
	}

	keystore, err := keystoreFor(route)
	if err != nil {
		return nil, err
	}

	cn := route.Name
	if val, ok := annotations[CommonNameAnnotation]; ok && val != "" {
		cn = val
	}
	ns := route.Namespace

	cert := &certificate{}
	cert.SetGroupVersionKind(CertificateGVK)
	cert.Metadata = certificateMeta{Name: route.Name + "-certs", Namespace: ns}
	cert.Spec = certificateSpec{
		CommonName: fmt.Sprintf("%s.%s", cn, ns),
		DNSNames: append([]string{
			fmt.Sprintf("%s.%s.svc.cluster.local", cn, ns),
			fmt.Sprintf("%s.%s.svc", cn, ns),
			fmt.Sprintf("%s.%s", cn, ns),
			cn,
			fmt.Sprintf("%s.%s.svc.cluster.local", synthesizer.ActuatorServiceName(route.Name), ns),
		}, splitList(annotations[AltNamesAnnotation])...),
		IssuerRef:  ref,
		Keystores:  keystore,
		SecretName: route.Name + "-certstore",
		Subject: subject{
			OrganizationalUnits: splitList(annotations[OrganizationalUnitsAnnotation]),
			Countries:           splitList(annotations[CountriesAnnotation]),
			Provinces:           splitList(annotations[ProvincesAnnotation]),
			Localities:          splitList(annotations[LocalitiesAnnotation]),
		},
	}

	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(cert)
	if err != nil {
		return nil, fmt.Errorf("encoding certificate: %w", err)
	}
	return &unstructured.Unstructured{Object: obj}, nil
}

func (s *Synthesizer) issuerRef(logger logr.Logger, annotations map[string]string) (issuerRef, bool) {
	issuer, hasIssuer := annotations[IssuerAnnotation]
	clusterIssuer, hasClusterIssuer := annotations[ClusterIssuerAnnotation]
	if s.Policy == IssuerPolicyClusterIssuerOnly {
		hasIssuer = false
	}

	switch {
	case hasIssuer && hasClusterIssuer:
		logger.Error(nil, "IntegrationRoute cannot have both metadata.annotations."+IssuerAnnotation+" and metadata.annotations."+ClusterIssuerAnnotation)
		certificatesSkipped.WithLabelValues(skipReasonIssuerConflict).Inc()
		return issuerRef{}, false
	case hasIssuer:
		return issuerRef{Group: CertificateGVK.Group, Kind: "Issuer", Name: issuer}, true
	case hasClusterIssuer:
		return issuerRef{Group: CertificateGVK.Group, Kind: "ClusterIssuer", Name: clusterIssuer}, true
	default:
		logger.Error(nil, "IntegrationRoute must have metadata.annotations."+IssuerAnnotation+" or metadata.annotations."+ClusterIssuerAnnotation, "issuerPolicy", s.Policy)
		certificatesSkipped.WithLabelValues(skipReasonNoIssuer).Inc()
		return issuerRef{}, false
	}
}

// keystoreFor asks cert-manager to write a keystore of the same format the route serves from.
func keystoreFor(route *apiv1.IntegrationRoute) (map[string]keystoreSettings, error) {
	if !route.Spec.HasKeystore() {
		return nil, inputs.MissingField("object", "spec", "tls", "keystore")
	}
	storeType, src := route.Spec.TLS.Keystore.Source()
	if src == nil {
		return nil, inputs.MissingField("object", "spec", "tls", "keystore", string(storeType))
	}
	return map[string]keystoreSettings{
		string(storeType): {
			Create: true,
			PasswordSecretRef: passwordSecretRef{
				Key:  synthesizer.PasswordSecretKey,
				Name: src.PasswordSecretRef,
			},
		},
	}, nil
}
