package ports

import (
	"context"

	"mnist-dashboard/internal/core/domain"
)

// Network is a trainable classifier owned by the training framework.
type Network interface {
	domain.Predictor

	// TrainEpoch runs one pass over batches and returns the final loss.
	TrainEpoch(ctx context.Context, batches []domain.Batch) (float64, error)
}

// NetworkFactory builds an untrained network for an architecture.
type NetworkFactory interface {
	New(arch domain.Architecture, hp domain.Hyperparameters) (Network, error)
}
