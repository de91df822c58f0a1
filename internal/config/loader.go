package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

// envKeys maps the environment variables read by the webhook to configuration keys.
var envKeys = map[string]string{
	"WEBHOOK_ADDR":       "server.addr",
	"INTEGRATION_IMAGE":  "integration.image",
	"DEBUG":              "log.debug",
	"LOG_LEVEL":          "log.level",
	"CERT_ISSUER_POLICY": "certmanager.issuer_policy",
}

// DEFAULT_RESOURCES_<REQUESTS|LIMITS>_<NAME>, e.g. DEFAULT_RESOURCES_LIMITS_MEMORY=2Gi.
const resourcesEnvPrefix = "DEFAULT_RESOURCES_"

// DefaultResourcesFlag takes comma separated quantities, e.g. requests.cpu=250m,limits.memory=2Gi.
const DefaultResourcesFlag = "default-resources"

// FlagKeys maps command line flags to configuration keys.
var FlagKeys = map[string]string{
	"addr":               "server.addr",
	"integration-image":  "integration.image",
	"debug":              "log.debug",
	"log-level":          "log.level",
	"cert-issuer-policy": "certmanager.issuer_policy",
	"shutdown-timeout":   "server.shutdown_timeout",
	"rate-limit":         "server.rate_limit",
	"max-body-bytes":     "server.max_body_bytes",
}

type Loader struct {
	k *koanf.Koanf
}

func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// Load layers the defaults, the config file (if any) and the environment.
func (l *Loader) Load(defaults Config, configPath string) error {
	if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// envKey returns the configuration key of an environment variable, or "" to ignore it.
func envKey(name string) string {
	if key, ok := envKeys[name]; ok {
		return key
	}

	rest, ok := strings.CutPrefix(name, resourcesEnvPrefix)
	if !ok {
		return ""
	}
	kind, resourceName, ok := strings.Cut(strings.ToLower(rest), "_")
	if !ok || resourceName == "" || (kind != "requests" && kind != "limits") {
		return ""
	}
	return "integration.default_resources." + kind + "." + strings.ReplaceAll(resourceName, "_", "-")
}

// LoadFlags applies the flags that were explicitly set on the command line.
func (l *Loader) LoadFlags(flags *pflag.FlagSet, mappings map[string]string) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		if f.Name == DefaultResourcesFlag {
			keys, err := resourceKeys(f.Value.String())
			if err != nil {
				errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
				return
			}
			for key, val := range keys {
				if err := l.k.Set(key, val); err != nil {
					errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
				}
			}
			return
		}
		if key, ok := mappings[f.Name]; ok {
			if err := l.k.Set(key, f.Value.String()); err != nil {
				errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

func (l *Loader) Unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalAndValidate returns the effective configuration, failing if it isn't valid.
func (l *Loader) UnmarshalAndValidate() (*Config, error) {
	cfg, err := l.Unmarshal()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) DumpYAML(w io.Writer) error {
	data, err := yaml.Marshal(l.k.Raw())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
