package kube

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic/fake"

	"mnist-dashboard/internal/config"
	"mnist-dashboard/internal/core/domain"
)

func newFakeClient() *fake.FakeDynamicClient {
	return fake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{configMapGVR: "ConfigMapList"})
}

func testRun(accuracy float64) *domain.TrainingRun {
	return &domain.TrainingRun{
		ID:              uuid.New(),
		FinishedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Architecture:    "mnist_cnn",
		Hyperparameters: domain.DefaultHyperparameters(),
		TestAccuracy:    accuracy,
		Status:          domain.RunStatusSucceeded,
	}
}

func getData(t *testing.T, client *fake.FakeDynamicClient) map[string]string {
	t.Helper()
	obj, err := client.Resource(configMapGVR).Namespace("ml").Get(context.Background(), "status", metav1.GetOptions{})
	require.NoError(t, err)
	data, found, err := unstructured.NestedStringMap(obj.Object, "data")
	require.NoError(t, err)
	require.True(t, found)
	return data
}

func TestStatusPublisher_PublishCreates(t *testing.T) {
	client := newFakeClient()
	p := NewStatusPublisherWithClient(client, "ml", "status")
	require.True(t, p.IsAvailable())

	run := testRun(0.98761)
	require.NoError(t, p.Publish(context.Background(), run))

	data := getData(t, client)
	assert.Equal(t, run.ID.String(), data["runId"])
	assert.Equal(t, "0.9876", data["testAccuracy"])
	assert.Equal(t, "SUCCEEDED", data["status"])
	assert.Equal(t, "5", data["epochs"])
	assert.Equal(t, "2026-03-01T12:00:00Z", data["finishedAt"])
}

func TestStatusPublisher_PublishUpdates(t *testing.T) {
	client := newFakeClient()
	p := NewStatusPublisherWithClient(client, "ml", "status")

	require.NoError(t, p.Publish(context.Background(), testRun(0.5)))
	second := testRun(0.9)
	require.NoError(t, p.Publish(context.Background(), second))

	data := getData(t, client)
	assert.Equal(t, second.ID.String(), data["runId"])
	assert.Equal(t, "0.9000", data["testAccuracy"])
}

func TestNewStatusPublisher_Disabled(t *testing.T) {
	p, err := NewStatusPublisher(&config.KubernetesConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, p.IsAvailable())
	assert.NoError(t, p.Publish(context.Background(), testRun(1)))
}
