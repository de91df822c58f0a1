package function

import (
	"errors"
	"reflect"

	hookv1 "github.com/connexta/keip-webhook/pkg/hook/api/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Convert is a utility function that wraps the default unstructured converter.
func Convert[T any](u *unstructured.Unstructured) (*T, error) {
	var res T
	_T := reflect.TypeOf(res)
	if _T.Kind() == reflect.Pointer {
		return nil, ErrPointerConversionTarget
	}

	err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, &res)
	if err != nil {
		return nil, errors.Join(ErrConversionFailed, err)
	}
	return &res, nil
}

// ReadChild converts the observed child with the given kind and name into T.
// The boolean is false when no such child was observed.
func ReadChild[T any](children hookv1.ChildMap, gvk schema.GroupVersionKind, name string) (*T, bool, error) {
	u := children.Get(gvk, name)
	if u == nil {
		return nil, false, nil
	}
	out, err := Convert[T](u)
	if err != nil {
		return nil, true, err
	}
	return out, true, nil
}
