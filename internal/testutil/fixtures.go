package testutil

import (
	"bytes"
	"context"
	"io"
	"math"
	"sync/atomic"

	"mnist-dashboard/internal/core/domain"
)

// Samples returns n valid samples with labels cycling 0..9. The label is
// encoded in the first pixel so LabelEcho can recover it.
func Samples(n int) []domain.ImageSample {
	out := make([]domain.ImageSample, n)
	for i := range out {
		raw := make([]byte, domain.ImagePixels)
		label := i % domain.NumClasses
		raw[0] = byte(label)
		raw[1+i%(domain.ImagePixels-1)] = 255
		s, err := domain.NewImageSample(raw, label)
		if err != nil {
			panic(err)
		}
		out[i] = s
	}
	return out
}

// LabelEcho is a Network that predicts the label encoded by Samples. Offset
// shifts every prediction, so a non-zero Offset gets every sample wrong.
type LabelEcho struct {
	Offset int
	Loss   float64
	Epochs atomic.Int32
	Calls  atomic.Int32
}

func (n *LabelEcho) TrainEpoch(ctx context.Context, batches []domain.Batch) (float64, error) {
	n.Epochs.Add(1)
	return n.Loss, nil
}

func (n *LabelEcho) Predict(ctx context.Context, pixels []float32) ([]float32, error) {
	n.Calls.Add(1)
	label := int(math.Round(float64(pixels[0]) * 255))
	return domain.OneHot((label + n.Offset) % domain.NumClasses), nil
}

// NopCloser wraps data as an io.ReadCloser.
func NopCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
