// Package config loads the webhook's process configuration.
//
// Values are layered, later sources winning: built-in defaults, an optional yaml file, environment
// variables, then command line flags. The result is validated once at startup and handed to the
// synthesizers as immutable values.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/connexta/keip-webhook/internal/certmanager"
	"github.com/connexta/keip-webhook/internal/synthesizer"
	"github.com/connexta/keip-webhook/internal/webhook"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Integration IntegrationConfig `koanf:"integration"`
	Log         LogConfig         `koanf:"log"`
	CertManager CertManagerConfig `koanf:"certmanager"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Hook requests per second. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Largest accepted hook request body, in bytes.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

type IntegrationConfig struct {
	// Image used by routes that don't set spec.image.
	Image string `koanf:"image"`

	// Resources injected into routes that declare none. Empty means none are injected.
	DefaultResources ResourcesConfig `koanf:"default_resources"`
}

type ResourcesConfig struct {
	Requests map[string]string `koanf:"requests,omitempty"`
	Limits   map[string]string `koanf:"limits,omitempty"`
}

type LogConfig struct {
	Debug bool   `koanf:"debug"`
	Level string `koanf:"level"`
}

type CertManagerConfig struct {
	IssuerPolicy string `koanf:"issuer_policy"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: webhook.DefaultShutdownTimeout,
			RateBurst:       10,
			MaxBodyBytes:    webhook.DefaultMaxBodyBytes,
		},
		Integration: IntegrationConfig{
			Image: "keip-integration",
		},
		Log: LogConfig{
			Level: "info",
		},
		CertManager: CertManagerConfig{
			IssuerPolicy: string(certmanager.IssuerPolicyExclusive),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Integration.Image == "" {
		errs = append(errs, errors.New("integration.image is required"))
	}
	if _, err := certmanager.ParseIssuerPolicy(c.CertManager.IssuerPolicy); err != nil {
		errs = append(errs, fmt.Errorf("certmanager.issuer_policy: %w", err))
	}
	if _, err := c.Integration.DefaultResources.ResourceRequirements(); err != nil {
		errs = append(errs, fmt.Errorf("integration.default_resources: %w", err))
	}
	return errors.Join(errs...)
}

// SynthesizerConfig returns the workload synthesizer's view of the configuration.
// It assumes the configuration has been validated.
func (c *Config) SynthesizerConfig() synthesizer.Config {
	res, _ := c.Integration.DefaultResources.ResourceRequirements()
	return synthesizer.Config{
		IntegrationImage: c.Integration.Image,
		DefaultResources: res,
	}
}

func (c *Config) IssuerPolicy() certmanager.IssuerPolicy {
	p, _ := certmanager.ParseIssuerPolicy(c.CertManager.IssuerPolicy)
	return p
}

func (c *Config) ServerConfig() webhook.ServerConfig {
	return webhook.ServerConfig{
		Addr:            c.Server.Addr,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

func (c *Config) HandlerOptions() webhook.HandlerOptions {
	return webhook.HandlerOptions{
		RateLimit:    c.Server.RateLimit,
		RateBurst:    c.Server.RateBurst,
		MaxBodyBytes: c.Server.MaxBodyBytes,
	}
}

// DebugEnabled is true when either the debug switch or a debug log level is set.
func (c *LogConfig) DebugEnabled() bool {
	return c.Debug || strings.EqualFold(c.Level, "debug")
}

// ResourceRequirements parses the configured quantities. Nil means no defaults are configured.
func (r *ResourcesConfig) ResourceRequirements() (*corev1.ResourceRequirements, error) {
	if len(r.Requests) == 0 && len(r.Limits) == 0 {
		return nil, nil
	}

	requests, err := parseResourceList("requests", r.Requests)
	if err != nil {
		return nil, err
	}
	limits, err := parseResourceList("limits", r.Limits)
	if err != nil {
		return nil, err
	}
	return &corev1.ResourceRequirements{Requests: requests, Limits: limits}, nil
}

func parseResourceList(field string, in map[string]string) (corev1.ResourceList, error) {
	if len(in) == 0 {
		return nil, nil
	}

	// Sorted so the first reported error doesn't depend on map order
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	list := corev1.ResourceList{}
	for _, name := range names {
		q, err := resource.ParseQuantity(in[name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", field, name, err)
		}
		list[corev1.ResourceName(name)] = q
	}
	return list, nil
}
