package function

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Option configures an OutputWriter.
type Option func(*writerConfig)

type writerConfig struct {
	mungers []MungeFunc
}

// WithMunger adds a munge function that will be applied to each output object.
// Multiple munge functions can be provided and they will be applied in order.
//
// Example usage:
//
//	NewOutputWriter(
//		WithMunger(func(obj *unstructured.Unstructured) {
//			labels := obj.GetLabels()
//			if labels == nil {
//				labels = make(map[string]string)
//			}
//			labels["app.kubernetes.io/part-of"] = "keip"
//			obj.SetLabels(labels)
//		}),
//	)
func WithMunger(m MungeFunc) Option {
	return func(opts *writerConfig) {
		opts.mungers = append(opts.mungers, m)
	}
}

// WithoutServerFields drops the fields owned by the apiserver (status and creationTimestamp)
// that typed structs always carry once encoded.
func WithoutServerFields() Option {
	return WithMunger(func(obj *unstructured.Unstructured) {
		unstructured.RemoveNestedField(obj.Object, "status")
		unstructured.RemoveNestedField(obj.Object, "metadata", "creationTimestamp")
		unstructured.RemoveNestedField(obj.Object, "spec", "template", "metadata", "creationTimestamp")
		if strategy, found, _ := unstructured.NestedMap(obj.Object, "spec", "strategy"); found && len(strategy) == 0 {
			unstructured.RemoveNestedField(obj.Object, "spec", "strategy")
		}
	})
}

// WithAnnotationsField makes sure metadata.annotations is always present, even when empty.
// Callers diffing desired against observed state rely on the key being stable.
func WithAnnotationsField() Option {
	return WithMunger(func(obj *unstructured.Unstructured) {
		if _, found, _ := unstructured.NestedFieldNoCopy(obj.Object, "metadata", "annotations"); found {
			return
		}
		unstructured.SetNestedField(obj.Object, map[string]any{}, "metadata", "annotations")
	})
}

// CompositeMungeFunc creates a composite munge function that applies all
// mungers in sequence. Returns nil if no mungers are configured.
func (opts *writerConfig) CompositeMungeFunc() MungeFunc {
	if len(opts.mungers) == 0 {
		return nil
	}

	return func(obj *unstructured.Unstructured) {
		for _, munger := range opts.mungers {
			munger(obj)
		}
	}
}
