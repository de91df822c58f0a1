package config

import "github.com/spf13/pflag"

// RegisterFlags declares the command line overrides listed in FlagKeys.
// Defaults live in Defaults; flags only take effect when set explicitly.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Defaults()
	flags.String("addr", d.Server.Addr, "Address the webhook listens on")
	flags.String("integration-image", d.Integration.Image, "Container image for routes that don't set one")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("cert-issuer-policy", d.CertManager.IssuerPolicy, "Certificate issuer policy (exclusive, cluster-issuer-only)")
	flags.String(DefaultResourcesFlag, "", "Resources for routes that declare none, e.g. requests.cpu=250m,limits.memory=2Gi")
	flags.Duration("shutdown-timeout", d.Server.ShutdownTimeout, "Time allowed for in-flight requests on shutdown")
	flags.Float64("rate-limit", d.Server.RateLimit, "Maximum hook requests per second, 0 for unlimited")
	flags.Int64("max-body-bytes", d.Server.MaxBodyBytes, "Largest accepted hook request body in bytes")
}
