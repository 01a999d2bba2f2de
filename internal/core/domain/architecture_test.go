package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitClassifier(t *testing.T) {
	arch := DigitClassifier()
	require.Len(t, arch.Layers, 7)

	assert.Equal(t, ImagePixels, arch.InputSize())
	assert.Equal(t, NumClasses, arch.OutputSize())

	kinds := make([]LayerKind, len(arch.Layers))
	for i, l := range arch.Layers {
		kinds[i] = l.Kind
	}
	assert.Equal(t, []LayerKind{LayerConv, LayerPool, LayerConv, LayerPool, LayerDense, LayerDense, LayerSoftmax}, kinds)

	conv1 := arch.Layers[0]
	assert.Equal(t, 26, conv1.OutputHeight)
	assert.Equal(t, Conv1Filters, conv1.OutputChannels)

	pool2 := arch.Layers[3]
	assert.Equal(t, 5, pool2.OutputHeight)
	assert.Equal(t, 5*5*Conv2Filters, pool2.OutputSize())

	hidden := arch.Layers[4]
	assert.Equal(t, 1600, hidden.InputSize())
	assert.Equal(t, HiddenUnits, hidden.OutputSize())
	assert.Equal(t, ActivationReLU, hidden.Activation)

	for i := 1; i < len(arch.Layers); i++ {
		assert.Equal(t, arch.Layers[i-1].OutputSize(), arch.Layers[i].InputSize(), "layer %d", i)
	}
}

func TestHyperparameters_Normalize(t *testing.T) {
	assert.Equal(t, DefaultHyperparameters(), Hyperparameters{ValidationSplit: -1, Seed: DefaultSeed}.Normalize())

	hp := Hyperparameters{Epochs: 2, BatchSize: 8, ValidationSplit: 1.5, LearningRate: 0.1}.Normalize()
	assert.Equal(t, 2, hp.Epochs)
	assert.Equal(t, 8, hp.BatchSize)
	assert.Equal(t, DefaultValidationSplit, hp.ValidationSplit)
	assert.Equal(t, 0.1, hp.LearningRate)
}

func TestPackBatches(t *testing.T) {
	samples := make([]ImageSample, 5)
	for i := range samples {
		raw := make([]byte, ImagePixels)
		raw[0] = byte(i)
		s, err := NewImageSample(raw, i)
		require.NoError(t, err)
		samples[i] = s
	}

	batches := PackBatches(samples, 2)
	require.Len(t, batches, 2)
	assert.Equal(t, 2, batches[1].Size)
	assert.Len(t, batches[1].Input, 2*ImagePixels)
	assert.Len(t, batches[1].Target, 2*NumClasses)
	assert.InDelta(t, 3.0/255, batches[1].Input[ImagePixels], 1e-6)
	assert.Equal(t, float32(1), batches[1].Target[NumClasses+3])

	assert.Nil(t, PackBatches(samples, 0))
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 1, ClampCount(-4))
	assert.Equal(t, 1, ClampCount(0))
	assert.Equal(t, 7, ClampCount(7))
	assert.Equal(t, 10, ClampCount(11))
}

func TestEvaluationResult_Banner(t *testing.T) {
	assert.Equal(t, "Model trained with test accuracy: 0.9876", EvaluationResult{Accuracy: 0.98764}.Banner())
}
