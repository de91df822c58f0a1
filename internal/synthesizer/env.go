package synthesizer

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	apiv1 "github.com/connexta/keip-webhook/api/v1"
	corev1 "k8s.io/api/core/v1"
)

const (
	AppConfigEnvName        = "SPRING_APPLICATION_JSON"
	JDKOptionsEnvName       = "JDK_JAVA_OPTIONS"
	KeystorePasswordEnvName = "SERVER_SSL_KEYSTOREPASSWORD"
	ServiceNameEnvName      = "SERVICE_NAME"

	// Key holding the store password in the Secret referenced by passwordSecretRef.
	PasswordSecretKey = "password"

	defaultJKSAlias    = "certificate"
	defaultPKCS12Alias = "1"
	jksTrustPassword   = "changeit"
)

// appConfig is serialized into SPRING_APPLICATION_JSON.
// Struct field order fixes the key order of the encoded document.
type appConfig struct {
	Spring     springConfig     `json:"spring"`
	Server     *serverConfig    `json:"server,omitempty"`
	Management managementConfig `json:"management"`
}

type springConfig struct {
	Application  springApplication `json:"application"`
	ConfigImport string            `json:"config.import,omitempty"`
	Cloud        *springCloud      `json:"cloud,omitempty"`
}

type springApplication struct {
	Name string `json:"name"`
}

type springCloud struct {
	Kubernetes cloudKubernetes `json:"kubernetes"`
}

type cloudKubernetes struct {
	Config  kubernetesConfig  `json:"config"`
	Secrets kubernetesSecrets `json:"secrets"`
}

type kubernetesConfig struct {
	FailFast  bool               `json:"fail-fast"`
	Namespace string             `json:"namespace"`
	Sources   []apiv1.PropSource `json:"sources,omitempty"`
}

type kubernetesSecrets struct {
	Paths string `json:"paths"`
}

type serverConfig struct {
	SSL  serverSSL `json:"ssl"`
	Port int32     `json:"port"`
}

type serverSSL struct {
	KeyAlias     string `json:"key-alias"`
	KeyStore     string `json:"key-store"`
	KeyStoreType string `json:"key-store-type"`
}

type managementConfig struct {
	Endpoint  managementEndpoint  `json:"endpoint"`
	Endpoints managementEndpoints `json:"endpoints"`
}

type managementEndpoint struct {
	Health     endpointToggle `json:"health"`
	Prometheus endpointToggle `json:"prometheus"`
}

type endpointToggle struct {
	Enabled bool `json:"enabled"`
}

type managementEndpoints struct {
	Web struct {
		Exposure struct {
			Include string `json:"include"`
		} `json:"exposure"`
	} `json:"web"`
}

// ComposeEnv returns the integration container's environment in a fixed order:
// application config, JDK trust options, keystore password, service name, then the route's own variables.
func ComposeEnv(route *apiv1.IntegrationRoute) ([]corev1.EnvVar, error) {
	appConfig, err := appConfigEnv(route)
	if err != nil {
		return nil, err
	}

	env := []corev1.EnvVar{appConfig}
	if opts := jdkOptionsEnv(&route.Spec); opts != nil {
		env = append(env, *opts)
	}
	if pw := keystorePasswordEnv(&route.Spec); pw != nil {
		env = append(env, *pw)
	}
	env = append(env, corev1.EnvVar{Name: ServiceNameEnvName, Value: route.Name})
	env = append(env, route.Spec.Env...)
	return env, nil
}

func appConfigEnv(route *apiv1.IntegrationRoute) (corev1.EnvVar, error) {
	js, err := json.Marshal(newAppConfig(route))
	if err != nil {
		return corev1.EnvVar{}, fmt.Errorf("encoding application config: %w", err)
	}
	return corev1.EnvVar{Name: AppConfigEnvName, Value: string(js)}, nil
}

func newAppConfig(route *apiv1.IntegrationRoute) *appConfig {
	cfg := &appConfig{
		Spring: springConfig{
			Application: springApplication{Name: route.Name},
		},
		Server: newServerConfig(&route.Spec),
	}

	if cloud := newCloudConfig(route); cloud != nil {
		cfg.Spring.ConfigImport = "kubernetes:"
		cfg.Spring.Cloud = cloud
	}

	cfg.Management.Endpoint.Health.Enabled = true
	cfg.Management.Endpoint.Prometheus.Enabled = true
	cfg.Management.Endpoints.Web.Exposure.Include = "health,prometheus"
	return cfg
}

func newServerConfig(spec *apiv1.IntegrationRouteSpec) *serverConfig {
	if !spec.HasKeystore() {
		return nil
	}

	storeType, src := spec.TLS.Keystore.Source()
	alias := src.Alias
	if alias == "" {
		alias = defaultKeyAlias(storeType)
	}
	return &serverConfig{
		SSL: serverSSL{
			KeyAlias:     alias,
			KeyStore:     path.Join(KeystorePath, src.Key),
			KeyStoreType: strings.ToUpper(string(storeType)),
		},
		Port: HTTPSPort,
	}
}

// newCloudConfig points Spring Cloud Kubernetes at the route's property and secret sources.
// Returns nil when the route declares neither.
func newCloudConfig(route *apiv1.IntegrationRoute) *springCloud {
	if len(route.Spec.PropSources) == 0 && len(route.Spec.SecretSources) == 0 {
		return nil
	}

	cloud := &springCloud{}
	cloud.Kubernetes.Config = kubernetesConfig{
		FailFast:  true,
		Namespace: route.Namespace,
	}
	if len(route.Spec.PropSources) > 0 {
		cloud.Kubernetes.Config.Sources = route.Spec.PropSources
	}
	cloud.Kubernetes.Secrets.Paths = SecretsRoot
	return cloud
}

func jdkOptionsEnv(spec *apiv1.IntegrationRouteSpec) *corev1.EnvVar {
	if !spec.HasTruststore() {
		return nil
	}

	storeType, src := spec.TLS.Truststore.Source()
	password := ""
	if storeType == apiv1.StoreTypeJKS {
		password = jksTrustPassword
	}
	return &corev1.EnvVar{
		Name: JDKOptionsEnvName,
		Value: fmt.Sprintf("-Djavax.net.ssl.trustStore=%s -Djavax.net.ssl.trustStorePassword=%s -Djavax.net.ssl.trustStoreType=%s",
			path.Join(TruststorePath, src.Key), password, strings.ToUpper(string(storeType))),
	}
}

func keystorePasswordEnv(spec *apiv1.IntegrationRouteSpec) *corev1.EnvVar {
	if !spec.HasKeystore() {
		return nil
	}

	_, src := spec.TLS.Keystore.Source()
	return &corev1.EnvVar{
		Name: KeystorePasswordEnvName,
		ValueFrom: &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: src.PasswordSecretRef},
				Key:                  PasswordSecretKey,
			},
		},
	}
}

func defaultKeyAlias(storeType apiv1.StoreType) string {
	if storeType == apiv1.StoreTypeJKS {
		return defaultJKSAlias
	}
	return defaultPKCS12Alias
}
