package ports

import (
	"context"

	"mnist-dashboard/internal/core/domain"
)

// StatusPublisher exposes the latest training run outside the process.
type StatusPublisher interface {
	// Publish writes the run status
	Publish(ctx context.Context, run *domain.TrainingRun) error

	// IsAvailable checks if publishing is enabled and configured
	IsAvailable() bool
}
