// Package certmanager synthesizes cert-manager Certificates for integration routes.
//
// It backs a decorator hook: the route is annotated with cert-manager.io/* keys and, when the annotations
// name exactly one issuer, a single Certificate is attached to it. Invalid annotation combinations are
// logged and yield no attachment rather than an error, so a misconfigured route never blocks its workload.
package certmanager

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/connexta/keip-webhook/internal/inputs"
	hookv1 "github.com/connexta/keip-webhook/pkg/hook/api/v1"
)

type Synthesizer struct {
	Policy IssuerPolicy
}

func New(policy IssuerPolicy) *Synthesizer {
	return &Synthesizer{Policy: policy}
}

// SyncJSON parses a decorator sync request body and synthesizes its attachments.
func (s *Synthesizer) SyncJSON(ctx context.Context, body []byte) (*hookv1.DecoratorResponse, error) {
	in, err := inputs.ParseDecorator(body)
	if err != nil {
		return nil, err
	}
	return s.Sync(ctx, in)
}

func (s *Synthesizer) Sync(ctx context.Context, in *inputs.Decorator) (*hookv1.DecoratorResponse, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("integrationRouteName", in.Route.Name, "integrationRouteNamespace", in.Route.Namespace)
	ctx = logr.NewContext(ctx, logger)

	cert, err := s.NewCertificate(ctx, in.Route)
	if err != nil {
		return nil, err
	}
	if cert != nil {
		logger.V(1).Info("synthesized certificate", "certificateName", cert.GetName())
		return hookv1.NewDecoratorResponse(cert), nil
	}
	return hookv1.NewDecoratorResponse(), nil
}
