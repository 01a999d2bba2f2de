// Package loom adapts the loom neural-network library to the Network port.
package loom

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openfluke/loom/nn"
	log "github.com/sirupsen/logrus"

	"mnist-dashboard/internal/core/domain"
	output "mnist-dashboard/internal/core/ports/output"
)

const lossType = "cross_entropy"

type factory struct {
	useGPU bool
}

// NewNetworkFactory creates a NetworkFactory backed by loom.
func NewNetworkFactory(useGPU bool) output.NetworkFactory {
	return &factory{useGPU: useGPU}
}

func (f *factory) New(arch domain.Architecture, hp domain.Hyperparameters) (output.Network, error) {
	cfg, err := BuildConfig(arch, hp.BatchSize)
	if err != nil {
		return nil, err
	}

	net, err := nn.BuildNetworkFromJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("build loom network: %w", err)
	}
	net.InitializeWeights()

	log.WithFields(log.Fields{
		"architecture": arch.Name,
		"layers":       len(arch.Layers),
		"gpu":          f.useGPU,
	}).Debug("loom network built")

	return &network{
		net:       net,
		batchSize: hp.BatchSize,
		config: &nn.TrainingConfig{
			Epochs:          1,
			LearningRate:    float32(hp.LearningRate),
			UseGPU:          f.useGPU,
			LossType:        lossType,
			PrintEveryBatch: 0,
			Verbose:         false,
		},
	}, nil
}

// network serialises access to the loom network, whose forward pass reuses
// internal buffers.
type network struct {
	mu        sync.Mutex
	net       *nn.Network
	batchSize int
	config    *nn.TrainingConfig
}

func (n *network) TrainEpoch(ctx context.Context, batches []domain.Batch) (loss float64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(batches) == 0 {
		return 0, fmt.Errorf("train epoch: no batches")
	}

	data := make([]nn.TrainingBatch, len(batches))
	for i, b := range batches {
		data[i] = nn.TrainingBatch{Input: b.Input, Target: b.Target}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	defer recoverInto(&err, "train")

	n.net.BatchSize = n.batchSize
	result, err := n.net.Train(data, n.config)
	if err != nil {
		return 0, fmt.Errorf("loom train: %w", err)
	}
	return float64(result.FinalLoss), nil
}

func (n *network) Predict(ctx context.Context, pixels []float32) (out []float32, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pixels) != domain.ImagePixels {
		return nil, fmt.Errorf("predict: expected %d inputs, got %d", domain.ImagePixels, len(pixels))
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	defer recoverInto(&err, "forward")

	n.net.BatchSize = 1
	raw, latency := n.net.Forward(pixels)
	log.WithField("latency_us", latency.Microseconds()).Debug("loom forward pass")
	if len(raw) != domain.NumClasses {
		return nil, fmt.Errorf("predict: expected %d outputs, got %d", domain.NumClasses, len(raw))
	}
	out = make([]float32, len(raw))
	copy(out, raw)
	return out, nil
}

// recoverInto turns a panic inside the library into an error.
func recoverInto(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("loom %s panicked: %v", op, r)
	}
}

type layerConfig struct {
	Type          string `json:"type"`
	Activation    string `json:"activation"`
	InputHeight   int    `json:"input_height"`
	InputWidth    int    `json:"input_width,omitempty"`
	InputChannels int    `json:"input_channels,omitempty"`
	Filters       int    `json:"filters,omitempty"`
	KernelSize    int    `json:"kernel_size,omitempty"`
	Stride        int    `json:"stride,omitempty"`
	Padding       int    `json:"padding"`
	OutputHeight  int    `json:"output_height,omitempty"`
	OutputWidth   int    `json:"output_width,omitempty"`
}

type networkConfig struct {
	ID            string        `json:"id"`
	BatchSize     int           `json:"batch_size"`
	GridRows      int           `json:"grid_rows"`
	GridCols      int           `json:"grid_cols"`
	LayersPerCell int           `json:"layers_per_cell"`
	Layers        []layerConfig `json:"layers"`
}

// BuildConfig renders an architecture as a loom network definition. loom has
// no pooling layer, so each pool stage is a learned convolution whose kernel
// and stride equal the pool size.
//
// loom takes the per-sample input width from the first layer's input_height,
// so the definition opens with a flat ImagePixels-wide layer ahead of the
// first convolution.
func BuildConfig(arch domain.Architecture, batchSize int) (string, error) {
	cfg := networkConfig{
		ID:            arch.Name,
		BatchSize:     batchSize,
		GridRows:      1,
		GridCols:      1,
		LayersPerCell: len(arch.Layers) + 1,
		Layers: []layerConfig{{
			Type:         "dense",
			Activation:   string(domain.ActivationLinear),
			InputHeight:  domain.ImagePixels,
			OutputHeight: domain.ImagePixels,
		}},
	}

	for i, l := range arch.Layers {
		lc := layerConfig{Activation: string(l.Activation)}
		switch l.Kind {
		case domain.LayerConv, domain.LayerPool:
			lc.Type = "conv2d"
			lc.InputHeight = l.InputHeight
			lc.InputWidth = l.InputWidth
			lc.InputChannels = l.InputChannels
			lc.Filters = l.Filters
			lc.KernelSize = l.Kernel
			lc.Stride = l.Stride
			lc.OutputHeight = l.OutputHeight
			lc.OutputWidth = l.OutputWidth
		case domain.LayerDense:
			lc.Type = "dense"
			lc.InputHeight = l.InputSize()
			lc.OutputHeight = l.OutputSize()
		case domain.LayerSoftmax:
			lc.Type = "softmax"
			lc.InputHeight = l.InputSize()
		default:
			return "", fmt.Errorf("layer %d: unsupported kind %q", i, l.Kind)
		}
		cfg.Layers = append(cfg.Layers, lc)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode loom config: %w", err)
	}
	return string(data), nil
}
