package domain

// MinPredictionCount and MaxPredictionCount bound the dashboard control.
const (
	MinPredictionCount     = 1
	MaxPredictionCount     = 10
	DefaultPredictionCount = 5
)

// Prediction pairs one test sample with the model output.
type Prediction struct {
	Index          int
	Image          ImageSample
	TrueLabel      int
	PredictedLabel int
	Confidence     float32
}

// Correct reports whether the predicted class matches the true class.
func (p Prediction) Correct() bool {
	return p.TrueLabel == p.PredictedLabel
}

// PredictionBatch is recomputed on every interaction.
type PredictionBatch struct {
	Predictions []Prediction
}

// Indices returns the test-set indices of the batch in order.
func (b *PredictionBatch) Indices() []int {
	out := make([]int, len(b.Predictions))
	for i, p := range b.Predictions {
		out[i] = p.Index
	}
	return out
}

// ClampCount bounds a user-requested count to the control range.
func ClampCount(n int) int {
	if n < MinPredictionCount {
		return MinPredictionCount
	}
	if n > MaxPredictionCount {
		return MaxPredictionCount
	}
	return n
}
