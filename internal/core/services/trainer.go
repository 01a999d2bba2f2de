package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"mnist-dashboard/internal/core/domain"
	"mnist-dashboard/internal/core/ports/output"
	"mnist-dashboard/internal/metrics"
)

// AccuracyPolicy decides what happens when test accuracy is below the minimum.
type AccuracyPolicy string

const (
	AccuracyPolicyWarn AccuracyPolicy = "warn"
	AccuracyPolicyFail AccuracyPolicy = "fail"
)

const trainKey = "model"

// DatasetLoader loads both dataset splits.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

type TrainerOptions struct {
	Hyperparameters domain.Hyperparameters
	MinAccuracy     float64
	Policy          AccuracyPolicy
}

// TrainerService trains the classifier once and memoises the result for the
// lifetime of the process. Failed attempts are not memoised.
type TrainerService struct {
	loader    DatasetLoader
	factory   ports.NetworkFactory
	runs      ports.TrainingRunRepository
	publisher ports.StatusPublisher
	arch      domain.Architecture
	opts      TrainerOptions

	model atomic.Pointer[domain.TrainedModel]
	group singleflight.Group
}

func NewTrainerService(
	loader DatasetLoader,
	factory ports.NetworkFactory,
	runs ports.TrainingRunRepository,
	publisher ports.StatusPublisher,
	opts TrainerOptions,
) *TrainerService {
	opts.Hyperparameters = opts.Hyperparameters.Normalize()
	if opts.Policy == "" {
		opts.Policy = AccuracyPolicyWarn
	}
	return &TrainerService{
		loader:    loader,
		factory:   factory,
		runs:      runs,
		publisher: publisher,
		arch:      domain.DigitClassifier(),
		opts:      opts,
	}
}

// GetOrTrain returns the cached model, training it on first use. Concurrent
// first callers share one training. Training is detached from ctx: a caller
// that gives up does not cancel the run for the others.
func (s *TrainerService) GetOrTrain(ctx context.Context) (*domain.TrainedModel, error) {
	if m := s.model.Load(); m != nil {
		return m, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(trainKey, func() (interface{}, error) {
		if m := s.model.Load(); m != nil {
			return m, nil
		}
		m, err := s.train(detached)
		if err != nil {
			return nil, err
		}
		s.model.Store(m)
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.TrainedModel), nil
	}
}

// Current returns the cached model without training.
func (s *TrainerService) Current() (*domain.TrainedModel, error) {
	if m := s.model.Load(); m != nil {
		return m, nil
	}
	return nil, domain.ErrModelNotReady
}

// Ready reports whether a trained model is cached.
func (s *TrainerService) Ready() bool {
	return s.model.Load() != nil
}

// Warmup starts training in the background.
func (s *TrainerService) Warmup() {
	go func() {
		if _, err := s.GetOrTrain(context.Background()); err != nil {
			log.WithError(err).Error("warm-up training failed")
		}
	}()
}

func (s *TrainerService) train(ctx context.Context) (*domain.TrainedModel, error) {
	hp := s.opts.Hyperparameters
	run := domain.TrainingRun{
		ID:              uuid.New(),
		StartedAt:       time.Now(),
		Architecture:    s.arch.Name,
		Hyperparameters: hp,
	}
	logger := log.WithField("run_id", run.ID.String())

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	fit, validation := splitValidation(ds.Train, hp.ValidationSplit)
	if len(fit) < hp.BatchSize {
		return nil, fmt.Errorf("%w: %d training samples is less than one batch of %d", domain.ErrTraining, len(fit), hp.BatchSize)
	}
	run.TrainSamples = len(fit)
	run.ValidationSamples = len(validation)
	run.TestSamples = len(ds.Test)

	net, err := s.factory.New(s.arch, hp)
	if err != nil {
		return nil, fmt.Errorf("%w: build network: %w", domain.ErrTraining, err)
	}

	logger.WithFields(log.Fields{
		"epochs":     hp.Epochs,
		"batch_size": hp.BatchSize,
		"train":      run.TrainSamples,
		"validation": run.ValidationSamples,
	}).Info("training started")

	rng := rand.New(rand.NewSource(hp.Seed))
	order := make([]domain.ImageSample, len(fit))
	copy(order, fit)
	var window metrics.Window

	for epoch := 1; epoch <= hp.Epochs; epoch++ {
		startPrepare := time.Now()
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		batches := domain.PackBatches(order, hp.BatchSize)
		prepareTime := time.Since(startPrepare)

		startFit := time.Now()
		loss, err := net.TrainEpoch(ctx, batches)
		if err != nil {
			return nil, fmt.Errorf("%w: epoch %d: %w", domain.ErrTraining, epoch, err)
		}
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return nil, fmt.Errorf("%w: epoch %d: %w", domain.ErrTraining, epoch, domain.ErrDiverged)
		}
		fitTime := time.Since(startFit)
		window.Record(len(batches)*hp.BatchSize, prepareTime, fitTime, loss)
		run.FinalLoss = loss

		fields := log.Fields{"epoch": epoch}
		if len(validation) > 0 {
			val, err := Evaluate(ctx, net, validation)
			if err != nil {
				return nil, fmt.Errorf("%w: validation: %w", domain.ErrTraining, err)
			}
			run.ValidationAccuracy = val.Accuracy
			fields["val_accuracy"] = fmt.Sprintf("%.4f", val.Accuracy)
		}

		snap := window.Snapshot()
		fields["samples_per_sec"] = fmt.Sprintf("%.1f", snap.SamplesPerSec)
		fields["prepare_ms"] = fmt.Sprintf("%.2f", snap.AvgPrepareMS)
		fields["fit_ms"] = fmt.Sprintf("%.2f", snap.AvgFitMS)
		fields["loss"] = fmt.Sprintf("%.4f", snap.LastLoss)
		logger.WithFields(fields).Info("epoch completed")
	}

	eval, err := Evaluate(ctx, net, ds.Test)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate: %w", domain.ErrTraining, err)
	}
	run.TestAccuracy = eval.Accuracy
	run.Status = domain.RunStatusSucceeded

	if eval.Accuracy < s.opts.MinAccuracy {
		if s.opts.Policy == AccuracyPolicyFail {
			return nil, fmt.Errorf("%w: %w: %.4f < %.4f", domain.ErrTraining, domain.ErrLowAccuracy, eval.Accuracy, s.opts.MinAccuracy)
		}
		run.Status = domain.RunStatusBelowThreshold
		logger.WithFields(log.Fields{
			"accuracy": eval.Accuracy,
			"minimum":  s.opts.MinAccuracy,
		}).Warn("test accuracy below configured minimum")
	}
	run.FinishedAt = time.Now()

	logger.WithFields(log.Fields{
		"accuracy": fmt.Sprintf("%.4f", eval.Accuracy),
		"duration": run.Duration().String(),
		"status":   run.Status,
	}).Info(eval.Banner())

	s.record(ctx, &run)

	return &domain.TrainedModel{
		Network:    net,
		Test:       ds.Test,
		Evaluation: *eval,
		Run:        run,
	}, nil
}

// record stores and publishes the run. Failures are logged only.
func (s *TrainerService) record(ctx context.Context, run *domain.TrainingRun) {
	logger := log.WithField("run_id", run.ID.String())
	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			logger.WithError(err).Warn("failed to record training run")
		}
	}
	if s.publisher != nil && s.publisher.IsAvailable() {
		if err := s.publisher.Publish(ctx, run); err != nil {
			logger.WithError(err).Warn("failed to publish training status")
		}
	}
}

// Evaluate runs inference over samples and returns accuracy and mean
// cross-entropy loss.
func Evaluate(ctx context.Context, p domain.Predictor, samples []domain.ImageSample) (*domain.EvaluationResult, error) {
	res := &domain.EvaluationResult{Total: len(samples)}
	if len(samples) == 0 {
		return res, nil
	}

	var loss float64
	for i, sample := range samples {
		out, err := p.Predict(ctx, sample.Pixels)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if len(out) != domain.NumClasses {
			return nil, fmt.Errorf("sample %d: unexpected output size %d", i, len(out))
		}
		if domain.Argmax(out) == sample.Label {
			res.Correct++
		}
		loss -= math.Log(math.Max(float64(out[sample.Label]), 1e-7))
	}

	res.Accuracy = float64(res.Correct) / float64(res.Total)
	res.Loss = loss / float64(res.Total)
	return res, nil
}

// splitValidation holds out the trailing fraction of the training split.
func splitValidation(train []domain.ImageSample, fraction float64) (fit, validation []domain.ImageSample) {
	n := int(float64(len(train)) * fraction)
	return train[:len(train)-n], train[len(train)-n:]
}
