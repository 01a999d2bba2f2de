package ports

import (
	"context"

	"mnist-dashboard/internal/core/domain"
)

type RunListFilter struct {
	Status string
	Limit  int
}

// TrainingRunRepository stores completed training runs.
type TrainingRunRepository interface {
	Create(ctx context.Context, run *domain.TrainingRun) error
	GetLatest(ctx context.Context) (*domain.TrainingRun, error)
	List(ctx context.Context, filter RunListFilter) ([]*domain.TrainingRun, error)
}
