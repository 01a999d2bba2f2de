// Package kube publishes training status into a Kubernetes ConfigMap.
package kube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"mnist-dashboard/internal/config"
	"mnist-dashboard/internal/core/domain"
	output "mnist-dashboard/internal/core/ports/output"
)

var configMapGVR = schema.GroupVersionResource{
	Group:    "",
	Version:  "v1",
	Resource: "configmaps",
}

const labelApp = "app.kubernetes.io/name"

type statusPublisher struct {
	client    dynamic.Interface
	enabled   bool
	namespace string
	name      string
}

// NewStatusPublisher creates a StatusPublisher that writes the latest run into
// a ConfigMap.
func NewStatusPublisher(cfg *config.KubernetesConfig) (output.StatusPublisher, error) {
	if !cfg.Enabled {
		return &statusPublisher{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return NewStatusPublisherWithClient(client, cfg.Namespace, cfg.ConfigMap), nil
}

// NewStatusPublisherWithClient creates an enabled StatusPublisher on an existing client.
func NewStatusPublisherWithClient(client dynamic.Interface, namespace, name string) output.StatusPublisher {
	if namespace == "" {
		namespace = "default"
	}
	if name == "" {
		name = "mnist-dashboard-status"
	}
	return &statusPublisher{
		client:    client,
		enabled:   true,
		namespace: namespace,
		name:      name,
	}
}

func (p *statusPublisher) IsAvailable() bool {
	return p.enabled
}

// Publish creates the ConfigMap or replaces its data.
func (p *statusPublisher) Publish(ctx context.Context, run *domain.TrainingRun) error {
	if !p.enabled {
		return nil
	}

	res := p.client.Resource(configMapGVR).Namespace(p.namespace)

	existing, err := res.Get(ctx, p.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		if _, err := res.Create(ctx, p.buildConfigMap(run), metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create status configmap: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get status configmap: %w", err)
	}

	if err := unstructured.SetNestedStringMap(existing.Object, runData(run), "data"); err != nil {
		return fmt.Errorf("set status data: %w", err)
	}
	if _, err := res.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("update status configmap: %w", err)
	}
	return nil
}

func (p *statusPublisher) buildConfigMap(run *domain.TrainingRun) *unstructured.Unstructured {
	data := map[string]interface{}{}
	for k, v := range runData(run) {
		data[k] = v
	}

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "ConfigMap",
			"metadata": map[string]interface{}{
				"name":      p.name,
				"namespace": p.namespace,
				"labels": map[string]interface{}{
					labelApp: "mnist-dashboard",
				},
			},
			"data": data,
		},
	}
}

func runData(run *domain.TrainingRun) map[string]string {
	return map[string]string{
		"runId":              run.ID.String(),
		"status":             string(run.Status),
		"architecture":       run.Architecture,
		"testAccuracy":       strconv.FormatFloat(run.TestAccuracy, 'f', 4, 64),
		"validationAccuracy": strconv.FormatFloat(run.ValidationAccuracy, 'f', 4, 64),
		"finalLoss":          strconv.FormatFloat(run.FinalLoss, 'f', 6, 64),
		"epochs":             strconv.Itoa(run.Hyperparameters.Epochs),
		"finishedAt":         run.FinishedAt.UTC().Format(time.RFC3339),
	}
}

// Ensure interface compliance
var _ output.StatusPublisher = (*statusPublisher)(nil)
