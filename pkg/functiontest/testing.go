package functiontest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"sigs.k8s.io/yaml"

	"github.com/connexta/keip-webhook/pkg/function"
)

// Scenario represents a test case for a hook function.
type Scenario[T any] struct {
	Name string

	// Input is the raw JSON request body.
	Input     []byte
	Assertion Assertion[T]
}

// Evaluate runs the hook function with the provided scenarios and asserts on the responses.
func Evaluate[T any](t *testing.T, hook function.HookFunc[T], scenarios ...Scenario[T]) {
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			output, err := hook(context.Background(), s.Input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s.Assertion(t, &s, output)
		})
	}
}

// LoadScenarios recursively loads yaml and json request fixtures from the specified directory.
func LoadScenarios[T any](t *testing.T, dir string, assertion Assertion[T]) []Scenario[T] {
	scenarios := []Scenario[T]{}
	walkFiles(t, dir, func(path, name string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("error while reading fixture %q: %s", path, err)
			return nil
		}

		js, err := yaml.YAMLToJSON(data)
		if err != nil {
			t.Errorf("error while parsing fixture %q: %s", path, err)
			return nil
		}
		scenarios = append(scenarios, Scenario[T]{
			Name:      name,
			Input:     js,
			Assertion: assertion,
		})
		return nil
	})

	// Make sure tests aren't coupled to a particular execution order
	rand.Shuffle(len(scenarios), func(i, j int) { scenarios[i], scenarios[j] = scenarios[j], scenarios[i] })

	return scenarios
}

type Assertion[T any] func(t *testing.T, s *Scenario[T], output T)

// AssertionChain is a helper function to create an assertion that runs multiple assertions in sequence.
func AssertionChain[T any](asserts ...Assertion[T]) Assertion[T] {
	return func(t *testing.T, s *Scenario[T], output T) {
		for i, assert := range asserts {
			t.Run(fmt.Sprintf("assertion-%d", i), func(t *testing.T) {
				assert(t, s, output)
			})
		}
	}
}

// AssertDeterministic returns an assertion that calls the hook a second time with the scenario's input
// and requires the encoded responses to be byte-identical.
func AssertDeterministic[T any](hook function.HookFunc[T]) Assertion[T] {
	return func(t *testing.T, s *Scenario[T], output T) {
		again, err := hook(context.Background(), s.Input)
		if err != nil {
			t.Fatalf("unexpected error on second call: %v", err)
		}

		first, err := json.Marshal(output)
		if err != nil {
			t.Fatalf("error while marshalling output: %s", err)
		}
		second, err := json.Marshal(again)
		if err != nil {
			t.Fatalf("error while marshalling output: %s", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("responses differ between calls:\n%s\n%s", first, second)
		}
	}
}

// LoadSnapshots returns an assertion that will compare the response of a hook function
// with the expected response stored in snapshot files.
//
// Snapshots are compared as JSON documents, so key order and yaml formatting don't matter.
// Scenarios that do not have a corresponding snapshot file will be ignored.
// To generate snapshots, set the KEIP_GEN_SNAPSHOTS environment variable to a non-empty value.
func LoadSnapshots[T any](t *testing.T, dir string) Assertion[T] {
	snapshots := map[string][]byte{}
	walkFiles(t, dir, func(path, name string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("error while reading snapshot %q: %s", path, err)
			return nil
		}
		js, err := yaml.YAMLToJSON(data)
		if err != nil {
			t.Errorf("error while parsing snapshot %q: %s", path, err)
			return nil
		}
		snapshots[name] = js
		return nil
	})

	return func(t *testing.T, s *Scenario[T], output T) {
		if os.Getenv("KEIP_GEN_SNAPSHOTS") != "" {
			data, err := yaml.Marshal(output)
			if err != nil {
				t.Fatalf("error while marshalling output: %s", err)
			}
			err = os.WriteFile(filepath.Join(dir, s.Name+".yaml"), data, 0644)
			if err != nil {
				t.Errorf("error while writing snapshot %q: %s", s.Name, err)
			}
			return
		}

		expected, ok := snapshots[s.Name]
		if !ok {
			return
		}

		actual, err := json.Marshal(output)
		if err != nil {
			t.Fatalf("error while marshalling output: %s", err)
		}
		assert.JSONEq(t, string(expected), string(actual), "output does not match the snapshot - re-run tests with KEIP_GEN_SNAPSHOTS=true to update it")
	}
}

func walkFiles(t *testing.T, dir string, fn func(path, name string) error) {
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		ext := filepath.Ext(info.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		return fn(path, info.Name()[:len(info.Name())-len(ext)])
	})
	if err != nil {
		t.Errorf("error while walking files: %s", err)
	}
}
