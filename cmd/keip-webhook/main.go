package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/connexta/keip-webhook/internal/certmanager"
	"github.com/connexta/keip-webhook/internal/config"
	"github.com/connexta/keip-webhook/internal/logging"
	"github.com/connexta/keip-webhook/internal/synthesizer"
	"github.com/connexta/keip-webhook/internal/webhook"
	"github.com/connexta/keip-webhook/pkg/function"
)

// Set at build time with -ldflags "-X main.version=..."
var version = ""

func main() {
	if err := newRootCmd().ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	cfg        *config.Config
	logger     logr.Logger
	flush      func()
}

func newRootCmd() *cobra.Command {
	a := &app{flush: func() {}}
	root := &cobra.Command{
		Use:           "keip-webhook",
		Short:         "Sync hooks computing the desired state of IntegrationRoutes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.flush()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Optional yaml config file")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the sync hooks over HTTP",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.serve(cmd) },
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Read a composite sync request on stdin and write the response to stdout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				synth := a.synthesizer()
				return function.Run(a.context(cmd), cmd.InOrStdin(), cmd.OutOrStdout(), synth.SyncJSON)
			},
		},
		&cobra.Command{
			Use:   "sync-certificate",
			Short: "Read a decorator sync request on stdin and write the certificate attachments to stdout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				certs := certmanager.New(a.cfg.IssuerPolicy())
				return function.Run(a.context(cmd), cmd.InOrStdin(), cmd.OutOrStdout(), certs.SyncJSON)
			},
		},
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if err := loader.Load(config.Defaults(), a.configPath); err != nil {
		return err
	}
	if err := loader.LoadFlags(cmd.Flags(), config.FlagKeys); err != nil {
		return err
	}
	cfg, err := loader.UnmarshalAndValidate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.logger, a.flush, err = logging.New(logging.Options{
		Debug:        cfg.Log.DebugEnabled(),
		Level:        cfg.Log.Level,
		BuildVersion: version,
	})
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	return nil
}

func (a *app) serve(cmd *cobra.Command) error {
	if a.cfg.Log.DebugEnabled() {
		a.logger.Info("WARNING - debug logging is enabled: request and response bodies, including secret references, will be logged")
	}
	a.logger.Info("starting webhook", "integrationImage", a.cfg.Integration.Image, "issuerPolicy", a.cfg.IssuerPolicy())

	handler := webhook.NewHandler(a.logger, a.synthesizer(), certmanager.New(a.cfg.IssuerPolicy()), a.cfg.HandlerOptions())
	srv := webhook.NewServer(a.cfg.ServerConfig(), handler, a.logger)
	return srv.Run(a.context(cmd))
}

func (a *app) synthesizer() *synthesizer.Synthesizer {
	return synthesizer.New(a.cfg.SynthesizerConfig())
}

// context returns the command's context carrying the logger.
// main cancels it on SIGINT/SIGTERM.
func (a *app) context(cmd *cobra.Command) context.Context {
	return logr.NewContext(cmd.Context(), a.logger)
}
