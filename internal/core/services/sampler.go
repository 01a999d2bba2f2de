package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mnist-dashboard/internal/core/domain"
)

// SamplerService draws random test examples and runs inference on them.
type SamplerService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSamplerService(seed int64) *SamplerService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SamplerService{rng: rand.New(rand.NewSource(seed))}
}

// Sample draws count distinct test indices uniformly at random and pairs each
// sample with the model prediction. Any inference failure aborts the batch.
func (s *SamplerService) Sample(ctx context.Context, p domain.Predictor, test []domain.ImageSample, count int) (*domain.PredictionBatch, error) {
	if count < 1 || count > len(test) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidCount, count, len(test))
	}

	indices := s.draw(len(test), count)
	batch := &domain.PredictionBatch{Predictions: make([]domain.Prediction, 0, count)}
	for _, idx := range indices {
		sample := test[idx]
		out, err := p.Predict(ctx, sample.Pixels)
		if err != nil {
			return nil, fmt.Errorf("%w: test sample %d: %w", domain.ErrInference, idx, err)
		}
		predicted := domain.Argmax(out)
		if predicted < 0 {
			return nil, fmt.Errorf("%w: test sample %d: empty output", domain.ErrInference, idx)
		}
		batch.Predictions = append(batch.Predictions, domain.Prediction{
			Index:          idx,
			Image:          sample,
			TrueLabel:      domain.Argmax(sample.OneHot()),
			PredictedLabel: predicted,
			Confidence:     out[predicted],
		})
	}
	return batch, nil
}

// draw returns k distinct indices from [0, n) using a partial Fisher-Yates shuffle.
func (s *SamplerService) draw(n, k int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	s.mu.Lock()
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	s.mu.Unlock()

	return perm[:k]
}
