package certmanager

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connexta/keip-webhook/internal/inputs"
	"github.com/connexta/keip-webhook/pkg/functiontest"
	hookv1 "github.com/connexta/keip-webhook/pkg/hook/api/v1"
)

func TestSyncFixtures(t *testing.T) {
	s := New(IssuerPolicyExclusive)
	assertion := functiontest.AssertionChain(
		functiontest.AssertDeterministic(s.SyncJSON),
		func(t *testing.T, scen *functiontest.Scenario[*hookv1.DecoratorResponse], out *hookv1.DecoratorResponse) {
			assert.LessOrEqual(t, len(out.Attachments), 1)
		},
		functiontest.LoadSnapshots[*hookv1.DecoratorResponse](t, "snapshots"),
	)
	functiontest.Evaluate(t, s.SyncJSON, functiontest.LoadScenarios(t, "fixtures", assertion)...)
}

func TestSyncJSON(t *testing.T) {
	s := New(IssuerPolicyExclusive)
	body := []byte(`{
		"object": {
			"apiVersion": "keip.codice.org/v1alpha1",
			"kind": "IntegrationRoute",
			"metadata": {
				"name": "testroute",
				"namespace": "testnamespace",
				"annotations": {"cert-manager.io/cluster-issuer": "test-issuer"}
			},
			"spec": {
				"routeConfigMap": "testroute-xml",
				"tls": {"keystore": {"jks": {"secretName": "s", "key": "k.jks", "passwordSecretRef": "pw"}}}
			}
		}
	}`)

	functiontest.Evaluate(t, s.SyncJSON, functiontest.Scenario[*hookv1.DecoratorResponse]{
		Name:  "cluster-issuer",
		Input: body,
		Assertion: functiontest.AssertionChain(
			functiontest.AssertDeterministic(s.SyncJSON),
			func(t *testing.T, scen *functiontest.Scenario[*hookv1.DecoratorResponse], out *hookv1.DecoratorResponse) {
				assert.Equal(t, map[string]any{}, out.Status)
				require.Len(t, out.Attachments, 1)
				assert.Equal(t, "Certificate", out.Attachments[0].GetKind())
				assert.Equal(t, "testroute-certs", out.Attachments[0].GetName())
			},
		),
	})
}

func TestSyncJSONEmptyAttachments(t *testing.T) {
	body := []byte(`{"object": {"metadata": {"name": "testroute", "namespace": "testnamespace"}, "spec": {}}}`)

	out, err := New(IssuerPolicyExclusive).SyncJSON(context.Background(), body)
	require.NoError(t, err)

	js, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": {}, "attachments": []}`, string(js))
}

func TestSyncJSONInvalid(t *testing.T) {
	s := New(IssuerPolicyExclusive)

	_, err := s.SyncJSON(context.Background(), []byte(`{`))
	assert.ErrorIs(t, err, inputs.ErrMalformedInput)

	_, err = s.SyncJSON(context.Background(), []byte(`{"object": {"metadata": {"name": "r"}}}`))
	assert.ErrorIs(t, err, inputs.ErrMissingField)
}
