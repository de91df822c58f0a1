// Package functiontest provides testing utilities for webhook hook functions.
//
// Hooks are exercised with raw request bodies, the same way the HTTP transport and the CLI call them,
// and assertions run against the decoded response.
//
// # Basic Usage
//
//	func TestSync(t *testing.T) {
//	    synth := synthesizer.New(synthesizer.Config{IntegrationImage: "keip-integration"})
//
//	    functiontest.Evaluate(t, synth.SyncJSON, functiontest.Scenario[*hookv1.SyncResponse]{
//	        Name:  "minimal-route",
//	        Input: []byte(`{"parent": {...}, "children": {}}`),
//	        Assertion: func(t *testing.T, s *functiontest.Scenario[*hookv1.SyncResponse], out *hookv1.SyncResponse) {
//	            assert.Len(t, out.Children, 2)
//	        },
//	    })
//	}
//
// # Fixtures and Snapshots
//
// Request bodies can be kept as yaml or json files and loaded with LoadScenarios.
// LoadSnapshots compares each scenario's response with a yaml file of the same name:
//
//	assertion := functiontest.AssertionChain(
//	    functiontest.AssertDeterministic(synth.SyncJSON),
//	    functiontest.LoadSnapshots[*hookv1.SyncResponse](t, "testdata/snapshots"),
//	)
//	functiontest.Evaluate(t, synth.SyncJSON, functiontest.LoadScenarios(t, "testdata/fixtures", assertion)...)
//
// To generate snapshots, create empty files in the snapshots directory and run the tests
// with the KEIP_GEN_SNAPSHOTS environment variable set.
package functiontest
