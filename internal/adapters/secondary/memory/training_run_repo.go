// Package memory holds in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"mnist-dashboard/internal/core/domain"
	output "mnist-dashboard/internal/core/ports/output"
)

type trainingRunRepo struct {
	mu   sync.RWMutex
	runs []domain.TrainingRun
}

// NewTrainingRunRepository creates an in-memory TrainingRunRepository.
func NewTrainingRunRepository() output.TrainingRunRepository {
	return &trainingRunRepo{}
}

func (r *trainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *trainingRunRepo) GetLatest(ctx context.Context) (*domain.TrainingRun, error) {
	runs, _ := r.List(ctx, output.RunListFilter{Limit: 1})
	if len(runs) == 0 {
		return nil, domain.ErrRunNotFound
	}
	return runs[0], nil
}

// List returns runs newest first.
func (r *trainingRunRepo) List(ctx context.Context, filter output.RunListFilter) ([]*domain.TrainingRun, error) {
	r.mu.RLock()
	out := make([]*domain.TrainingRun, 0, len(r.runs))
	for i := range r.runs {
		if filter.Status != "" && string(r.runs[i].Status) != filter.Status {
			continue
		}
		run := r.runs[i]
		out = append(out, &run)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
