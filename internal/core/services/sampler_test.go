package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mnist-dashboard/internal/core/domain"
	"mnist-dashboard/internal/testutil"
)

func TestSamplerService_Sample(t *testing.T) {
	svc := NewSamplerService(1)
	test := testutil.Samples(100)

	for _, count := range []int{1, 5, 10} {
		batch, err := svc.Sample(context.Background(), &testutil.LabelEcho{}, test, count)
		require.NoError(t, err)
		require.Len(t, batch.Predictions, count)

		seen := map[int]bool{}
		for _, p := range batch.Predictions {
			assert.GreaterOrEqual(t, p.Index, 0)
			assert.Less(t, p.Index, len(test))
			assert.False(t, seen[p.Index], "index %d drawn twice", p.Index)
			seen[p.Index] = true

			assert.Equal(t, test[p.Index].Label, p.TrueLabel)
			assert.Equal(t, p.TrueLabel, p.PredictedLabel)
			assert.True(t, p.Correct())
			assert.Equal(t, float32(1), p.Confidence)
		}
	}
}

func TestSamplerService_Sample_WholeTestSet(t *testing.T) {
	svc := NewSamplerService(1)
	test := testutil.Samples(10)

	batch, err := svc.Sample(context.Background(), &testutil.LabelEcho{}, test, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, batch.Indices())
}

func TestSamplerService_Sample_InvalidCount(t *testing.T) {
	svc := NewSamplerService(1)
	test := testutil.Samples(5)

	_, err := svc.Sample(context.Background(), &testutil.LabelEcho{}, test, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCount)

	_, err = svc.Sample(context.Background(), &testutil.LabelEcho{}, test, 6)
	assert.ErrorIs(t, err, domain.ErrInvalidCount)
}

func TestSamplerService_Sample_InferenceFailure(t *testing.T) {
	svc := NewSamplerService(1)
	net := new(testutil.MockNetwork)
	net.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("device lost"))

	_, err := svc.Sample(context.Background(), net, testutil.Samples(5), 3)
	assert.ErrorIs(t, err, domain.ErrInference)
	net.AssertNumberOfCalls(t, "Predict", 1)
}

func TestSamplerService_Sample_WrongPrediction(t *testing.T) {
	svc := NewSamplerService(1)

	batch, err := svc.Sample(context.Background(), &testutil.LabelEcho{Offset: 1}, testutil.Samples(20), 4)
	require.NoError(t, err)
	for _, p := range batch.Predictions {
		assert.Equal(t, (p.TrueLabel+1)%domain.NumClasses, p.PredictedLabel)
		assert.False(t, p.Correct())
	}
}

func TestSamplerService_Sample_CoversAllIndices(t *testing.T) {
	svc := NewSamplerService(3)
	test := testutil.Samples(5)

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		batch, err := svc.Sample(context.Background(), &testutil.LabelEcho{}, test, 1)
		require.NoError(t, err)
		seen[batch.Predictions[0].Index] = true
	}
	assert.Len(t, seen, 5)
}
