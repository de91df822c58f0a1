package certmanager

import (
	"fmt"
	"strings"
)

const (
	AnnotationPrefix = "cert-manager.io/"

	IssuerAnnotation              = AnnotationPrefix + "issuer"
	ClusterIssuerAnnotation       = AnnotationPrefix + "cluster-issuer"
	CommonNameAnnotation          = AnnotationPrefix + "common-name"
	AltNamesAnnotation            = AnnotationPrefix + "alt-names"
	OrganizationalUnitsAnnotation = AnnotationPrefix + "subject-organizationalunits"
	CountriesAnnotation           = AnnotationPrefix + "subject-countries"
	ProvincesAnnotation           = AnnotationPrefix + "subject-provinces"
	LocalitiesAnnotation          = AnnotationPrefix + "subject-localities"
)

// IssuerPolicy decides which issuer annotations are honoured.
type IssuerPolicy string

const (
	// IssuerPolicyExclusive accepts either issuer annotation but refuses routes setting both.
	IssuerPolicyExclusive IssuerPolicy = "exclusive"

	// IssuerPolicyClusterIssuerOnly ignores the namespaced issuer annotation entirely.
	IssuerPolicyClusterIssuerOnly IssuerPolicy = "cluster-issuer-only"
)

func ParseIssuerPolicy(s string) (IssuerPolicy, error) {
	switch p := IssuerPolicy(s); p {
	case IssuerPolicyExclusive, IssuerPolicyClusterIssuerOnly:
		return p, nil
	case "":
		return IssuerPolicyExclusive, nil
	default:
		return "", fmt.Errorf("unknown issuer policy %q", s)
	}
}

// hasCertManagerAnnotations is true when any annotation is in the cert-manager.io namespace.
func hasCertManagerAnnotations(annotations map[string]string) bool {
	for k := range annotations {
		if strings.HasPrefix(k, AnnotationPrefix) {
			return true
		}
	}
	return false
}

// splitList parses a comma separated annotation value.
// Entries are trimmed and empty entries are dropped, so "" and "," both yield an empty list.
func splitList(val string) []string {
	list := []string{}
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
