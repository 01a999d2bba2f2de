package domain

// LayerKind identifies a layer of the classifier topology.
type LayerKind string

const (
	LayerConv    LayerKind = "conv"
	LayerPool    LayerKind = "pool"
	LayerDense   LayerKind = "dense"
	LayerSoftmax LayerKind = "softmax"
)

// Activation of a layer.
type Activation string

const (
	ActivationReLU   Activation = "relu"
	ActivationLinear Activation = "none"
)

// Classifier topology.
const (
	Conv1Filters = 32
	Conv2Filters = 64
	ConvKernel   = 3
	PoolSize     = 2
	HiddenUnits  = 64
)

// Default training hyperparameters.
const (
	DefaultEpochs          = 5
	DefaultBatchSize       = 64
	DefaultValidationSplit = 0.1
	DefaultLearningRate    = 0.001
	DefaultSeed            = 42
)

// Layer is one stage of the classifier with its input and output geometry.
type Layer struct {
	Kind       LayerKind
	Activation Activation

	InputHeight   int
	InputWidth    int
	InputChannels int

	Filters int
	Kernel  int
	Stride  int

	OutputHeight   int
	OutputWidth    int
	OutputChannels int
}

// InputSize is the flattened input length of the layer.
func (l Layer) InputSize() int {
	return l.InputHeight * l.InputWidth * l.InputChannels
}

// OutputSize is the flattened output length of the layer.
func (l Layer) OutputSize() int {
	return l.OutputHeight * l.OutputWidth * l.OutputChannels
}

// Architecture is an ordered list of layers.
type Architecture struct {
	Name   string
	Layers []Layer
}

// InputSize of the first layer.
func (a Architecture) InputSize() int {
	if len(a.Layers) == 0 {
		return 0
	}
	return a.Layers[0].InputSize()
}

// OutputSize of the last layer.
func (a Architecture) OutputSize() int {
	if len(a.Layers) == 0 {
		return 0
	}
	return a.Layers[len(a.Layers)-1].OutputSize()
}

// DigitClassifier returns the fixed topology: two convolution + pooling stages,
// a flatten, a dense hidden layer and a 10-way softmax output.
func DigitClassifier() Architecture {
	b := &archBuilder{h: ImageRows, w: ImageCols, c: ImageChannels}
	b.conv(Conv1Filters, ConvKernel)
	b.pool(PoolSize)
	b.conv(Conv2Filters, ConvKernel)
	b.pool(PoolSize)
	// flatten is implicit: layers exchange row-major flat vectors
	b.dense(HiddenUnits, ActivationReLU)
	b.dense(NumClasses, ActivationLinear)
	b.softmax()
	return Architecture{Name: "mnist_cnn", Layers: b.layers}
}

type archBuilder struct {
	h, w, c int
	layers  []Layer
}

func (b *archBuilder) conv(filters, kernel int) {
	l := Layer{
		Kind: LayerConv, Activation: ActivationReLU,
		InputHeight: b.h, InputWidth: b.w, InputChannels: b.c,
		Filters: filters, Kernel: kernel, Stride: 1,
		OutputHeight: b.h - kernel + 1, OutputWidth: b.w - kernel + 1, OutputChannels: filters,
	}
	b.push(l)
}

func (b *archBuilder) pool(size int) {
	l := Layer{
		Kind: LayerPool, Activation: ActivationReLU,
		InputHeight: b.h, InputWidth: b.w, InputChannels: b.c,
		Filters: b.c, Kernel: size, Stride: size,
		OutputHeight: (b.h-size)/size + 1, OutputWidth: (b.w-size)/size + 1, OutputChannels: b.c,
	}
	b.push(l)
}

func (b *archBuilder) dense(units int, act Activation) {
	l := Layer{
		Kind: LayerDense, Activation: act,
		InputHeight: b.h * b.w * b.c, InputWidth: 1, InputChannels: 1,
		OutputHeight: units, OutputWidth: 1, OutputChannels: 1,
	}
	b.push(l)
}

func (b *archBuilder) softmax() {
	l := Layer{
		Kind: LayerSoftmax, Activation: ActivationLinear,
		InputHeight: b.h * b.w * b.c, InputWidth: 1, InputChannels: 1,
		OutputHeight: b.h * b.w * b.c, OutputWidth: 1, OutputChannels: 1,
	}
	b.push(l)
}

func (b *archBuilder) push(l Layer) {
	b.layers = append(b.layers, l)
	b.h, b.w, b.c = l.OutputHeight, l.OutputWidth, l.OutputChannels
}

// Hyperparameters of a training run.
type Hyperparameters struct {
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batch_size"`
	ValidationSplit float64 `json:"validation_split"`
	LearningRate    float64 `json:"learning_rate"`
	Seed            int64   `json:"seed"`
}

// DefaultHyperparameters returns the reference training settings.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Epochs:          DefaultEpochs,
		BatchSize:       DefaultBatchSize,
		ValidationSplit: DefaultValidationSplit,
		LearningRate:    DefaultLearningRate,
		Seed:            DefaultSeed,
	}
}

// Normalize replaces invalid values with defaults.
func (h Hyperparameters) Normalize() Hyperparameters {
	if h.Epochs <= 0 {
		h.Epochs = DefaultEpochs
	}
	if h.BatchSize <= 0 {
		h.BatchSize = DefaultBatchSize
	}
	if h.ValidationSplit < 0 || h.ValidationSplit >= 1 {
		h.ValidationSplit = DefaultValidationSplit
	}
	if h.LearningRate <= 0 {
		h.LearningRate = DefaultLearningRate
	}
	return h
}
