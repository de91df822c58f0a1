package function

import (
	"fmt"
	"reflect"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Scheme resolves the GVK of typed outputs that don't set their TypeMeta.
var Scheme = scheme.Scheme

type OutputWriter struct {
	outputs   []*unstructured.Unstructured
	committed bool
	munge     MungeFunc
}

type MungeFunc func(*unstructured.Unstructured)

func NewOutputWriter(opts ...Option) *OutputWriter {
	cfg := &writerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &OutputWriter{
		outputs: []*unstructured.Unstructured{},
		munge:   cfg.CompositeMungeFunc(),
	}
}

func (w *OutputWriter) Add(outs ...client.Object) error {
	if w.committed {
		return ErrWriterIsCommitted
	}

	// Doing a "filter" to avoid committing nil values.
	for _, o := range outs {
		if isNil(o) {
			continue
		}

		// Resolve GVK if needed
		if o.GetObjectKind().GroupVersionKind().Empty() {
			gvks, _, err := Scheme.ObjectKinds(o)
			if err != nil {
				return fmt.Errorf("%w %q: %w", ErrUnknownKind, o.GetName(), err)
			}
			if len(gvks) == 0 {
				return fmt.Errorf("%w %q", ErrUnknownKind, o.GetName())
			}
			o.GetObjectKind().SetGroupVersionKind(gvks[0])
		}

		// Encode
		obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(o)
		if err != nil {
			return fmt.Errorf(
				"converting %s %s to unstructured: %w",
				o.GetName(),
				o.GetObjectKind().GroupVersionKind().Kind,
				err,
			)
		}
		u := &unstructured.Unstructured{Object: obj}
		if w.munge != nil {
			w.munge(u)
		}
		w.outputs = append(w.outputs, u)
	}
	return nil
}

// Outputs returns the encoded objects in the order they were added.
// The writer doesn't accept new objects afterwards.
func (w *OutputWriter) Outputs() []*unstructured.Unstructured {
	w.committed = true
	return w.outputs
}

func isNil(o client.Object) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
