package domain

import (
	"context"
	"fmt"
)

// Predictor runs single-sample inference and returns the class distribution.
type Predictor interface {
	Predict(ctx context.Context, pixels []float32) ([]float32, error)
}

// EvaluationResult is computed once against the test split.
type EvaluationResult struct {
	Accuracy float64 `json:"accuracy"`
	Loss     float64 `json:"loss"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
}

// Banner formats the accuracy line shown on the dashboard.
func (e EvaluationResult) Banner() string {
	return fmt.Sprintf("Model trained with test accuracy: %.4f", e.Accuracy)
}

// TrainedModel is the memoised training output. It is never mutated after creation.
type TrainedModel struct {
	Network    Predictor
	Test       []ImageSample
	Evaluation EvaluationResult
	Run        TrainingRun
}
