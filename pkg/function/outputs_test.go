package function

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

func TestOutputWriter(t *testing.T) {
	w := NewOutputWriter()

	cm := &corev1.ConfigMap{}
	cm.Name = "test-cm"

	require.NoError(t, w.Add(nil))
	require.NoError(t, w.Add(cm))

	outputs := w.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, "v1", outputs[0].GetAPIVersion())
	assert.Equal(t, "ConfigMap", outputs[0].GetKind())
	assert.Equal(t, "test-cm", outputs[0].GetName())

	assert.ErrorIs(t, w.Add(cm), ErrWriterIsCommitted)
}

func TestOutputWriterMunge(t *testing.T) {
	w := NewOutputWriter(WithMunger(func(u *unstructured.Unstructured) {
		unstructured.SetNestedField(u.Object, "value from munge function", "data", "extra-val")
	}))

	cm := &corev1.ConfigMap{}
	cm.Name = "test-cm"

	require.NoError(t, w.Add(cm))
	val, _, _ := unstructured.NestedString(w.Outputs()[0].Object, "data", "extra-val")
	assert.Equal(t, "value from munge function", val)
}

func TestNilAdds(t *testing.T) {
	w := NewOutputWriter()

	var cm *corev1.ConfigMap
	objs := []client.Object{nil, cm}

	require.NoError(t, w.Add(objs...))
	assert.NotNil(t, w.Outputs())
	assert.Empty(t, w.Outputs())
}

func TestUnstructuredPassthrough(t *testing.T) {
	w := NewOutputWriter()

	cert := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "cert-manager.io/v1",
		"kind":       "Certificate",
		"metadata":   map[string]any{"name": "test-certs"},
	}}
	require.NoError(t, w.Add(cert))

	out := w.Outputs()[0]
	assert.Equal(t, "Certificate", out.GetKind())
	assert.Equal(t, "test-certs", out.GetName())
}

func TestWithoutServerFields(t *testing.T) {
	w := NewOutputWriter(WithoutServerFields())

	deploy := &appsv1.Deployment{}
	deploy.Name = "testroute"
	require.NoError(t, w.Add(deploy))

	out := w.Outputs()[0]
	assert.Equal(t, "apps/v1", out.GetAPIVersion())
	assert.Equal(t, "Deployment", out.GetKind())

	_, found, _ := unstructured.NestedFieldNoCopy(out.Object, "status")
	assert.False(t, found)
	_, found, _ = unstructured.NestedFieldNoCopy(out.Object, "metadata", "creationTimestamp")
	assert.False(t, found)
	_, found, _ = unstructured.NestedFieldNoCopy(out.Object, "spec", "template", "metadata", "creationTimestamp")
	assert.False(t, found)
	_, found, _ = unstructured.NestedFieldNoCopy(out.Object, "spec", "strategy")
	assert.False(t, found)
}

func TestWithAnnotationsField(t *testing.T) {
	w := NewOutputWriter(WithAnnotationsField())

	bare := &corev1.Service{}
	bare.Name = "bare"
	annotated := &corev1.Service{}
	annotated.Name = "annotated"
	annotated.Annotations = map[string]string{"foo": "bar"}
	require.NoError(t, w.Add(bare, annotated))

	outputs := w.Outputs()
	annos, found, _ := unstructured.NestedFieldNoCopy(outputs[0].Object, "metadata", "annotations")
	assert.True(t, found)
	assert.Equal(t, map[string]any{}, annos)

	js, err := json.Marshal(outputs[0])
	require.NoError(t, err)
	assert.Contains(t, string(js), `"annotations":{}`)

	assert.Equal(t, map[string]string{"foo": "bar"}, outputs[1].GetAnnotations())
}

func TestCompositeMunger(t *testing.T) {
	addLabelMunger := func(obj *unstructured.Unstructured) {
		labels := obj.GetLabels()
		if labels == nil {
			labels = make(map[string]string)
		}
		labels["test-label"] = "test-value"
		obj.SetLabels(labels)
	}

	overwriteLabelMunger := func(obj *unstructured.Unstructured) {
		labels := obj.GetLabels()
		labels["test-label"] = "overwritten"
		obj.SetLabels(labels)
	}

	opts := &writerConfig{}
	assert.Nil(t, opts.CompositeMungeFunc())

	WithMunger(addLabelMunger)(opts)
	WithMunger(overwriteLabelMunger)(opts)

	u := &unstructured.Unstructured{Object: map[string]any{}}
	opts.CompositeMungeFunc()(u)
	assert.Equal(t, map[string]string{"test-label": "overwritten"}, u.GetLabels())
}
