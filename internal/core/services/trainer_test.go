package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mnist-dashboard/internal/core/domain"
	"mnist-dashboard/internal/testutil"
)

func testHyperparameters() domain.Hyperparameters {
	return domain.Hyperparameters{Epochs: 2, BatchSize: 16, ValidationSplit: 0.1, LearningRate: 0.01, Seed: 7}
}

func testDataset() *domain.Dataset {
	return &domain.Dataset{Train: testutil.Samples(200), Test: testutil.Samples(50)}
}

type trainerFixture struct {
	loader  *testutil.MockDatasetLoader
	factory *testutil.MockNetworkFactory
	runs    *testutil.MockTrainingRunRepo
	net     *testutil.LabelEcho
}

func newTrainerFixture() *trainerFixture {
	return &trainerFixture{
		loader:  new(testutil.MockDatasetLoader),
		factory: new(testutil.MockNetworkFactory),
		runs:    new(testutil.MockTrainingRunRepo),
		net:     &testutil.LabelEcho{Loss: 0.25},
	}
}

func (f *trainerFixture) service(opts TrainerOptions) *TrainerService {
	if opts.Hyperparameters == (domain.Hyperparameters{}) {
		opts.Hyperparameters = testHyperparameters()
	}
	return NewTrainerService(f.loader, f.factory, f.runs, nil, opts)
}

func TestTrainerService_GetOrTrain(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil).Once()
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil).Once()
	f.runs.On("Create", mock.Anything, mock.AnythingOfType("*domain.TrainingRun")).Return(nil).Once()

	svc := f.service(TrainerOptions{MinAccuracy: 0.9})
	assert.False(t, svc.Ready())

	m, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.True(t, svc.Ready())
	assert.Equal(t, 1.0, m.Evaluation.Accuracy)
	assert.Equal(t, 50, m.Evaluation.Total)
	assert.Len(t, m.Test, 50)
	assert.Equal(t, int32(2), f.net.Epochs.Load())

	run := m.Run
	assert.Equal(t, domain.RunStatusSucceeded, run.Status)
	assert.Equal(t, 180, run.TrainSamples)
	assert.Equal(t, 20, run.ValidationSamples)
	assert.Equal(t, 50, run.TestSamples)
	assert.Equal(t, 0.25, run.FinalLoss)
	assert.Equal(t, 1.0, run.ValidationAccuracy)
	assert.Equal(t, "mnist_cnn", run.Architecture)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	again, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.Same(t, m, again)

	f.loader.AssertExpectations(t)
	f.factory.AssertNumberOfCalls(t, "New", 1)
	f.runs.AssertExpectations(t)
}

func TestTrainerService_GetOrTrain_ConcurrentCallersShareTraining(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(TrainerOptions{})

	const callers = 8
	models := make([]*domain.TrainedModel, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.GetOrTrain(context.Background())
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range models {
		assert.Same(t, models[0], m)
	}
	f.factory.AssertNumberOfCalls(t, "New", 1)
	f.loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestTrainerService_GetOrTrain_FailureIsRetried(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(nil, domain.ErrDataUnavailable).Once()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil).Once()
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(TrainerOptions{})

	_, err := svc.GetOrTrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.False(t, svc.Ready())

	m, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.True(t, svc.Ready())
}

func TestTrainerService_GetOrTrain_CallerCancelDoesNotAbortTraining(t *testing.T) {
	f := newTrainerFixture()
	release := make(chan struct{})
	f.loader.On("Load", mock.Anything).Run(func(mock.Arguments) { <-release }).Return(testDataset(), nil).Once()
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil).Once()
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(TrainerOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GetOrTrain(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	m, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
	f.factory.AssertNumberOfCalls(t, "New", 1)
}

func TestTrainerService_GetOrTrain_BuildFailure(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(nil, errors.New("bad layer"))

	svc := f.service(TrainerOptions{})
	_, err := svc.GetOrTrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrTraining)
	assert.False(t, svc.Ready())
}

func TestTrainerService_GetOrTrain_Diverged(t *testing.T) {
	f := newTrainerFixture()
	f.net.Loss = math.NaN()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)

	svc := f.service(TrainerOptions{})
	_, err := svc.GetOrTrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrTraining)
	assert.ErrorIs(t, err, domain.ErrDiverged)
	f.runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTrainerService_GetOrTrain_NotEnoughSamples(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(&domain.Dataset{Train: testutil.Samples(10), Test: testutil.Samples(5)}, nil)

	svc := f.service(TrainerOptions{})
	_, err := svc.GetOrTrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrTraining)
	f.factory.AssertNotCalled(t, "New", mock.Anything, mock.Anything)
}

func TestTrainerService_GetOrTrain_LowAccuracyWarn(t *testing.T) {
	f := newTrainerFixture()
	f.net.Offset = 1
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(TrainerOptions{MinAccuracy: 0.9, Policy: AccuracyPolicyWarn})
	m, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Evaluation.Accuracy)
	assert.Equal(t, domain.RunStatusBelowThreshold, m.Run.Status)
}

func TestTrainerService_GetOrTrain_LowAccuracyFail(t *testing.T) {
	f := newTrainerFixture()
	f.net.Offset = 1
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)

	svc := f.service(TrainerOptions{MinAccuracy: 0.9, Policy: AccuracyPolicyFail})
	_, err := svc.GetOrTrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrTraining)
	assert.ErrorIs(t, err, domain.ErrLowAccuracy)
	assert.False(t, svc.Ready())
}

func TestTrainerService_RecordFailureIsNotFatal(t *testing.T) {
	f := newTrainerFixture()
	publisher := new(testutil.MockStatusPublisher)
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	publisher.On("IsAvailable").Return(true)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*domain.TrainingRun")).Return(errors.New("forbidden"))

	svc := NewTrainerService(f.loader, f.factory, f.runs, publisher, TrainerOptions{Hyperparameters: testHyperparameters()})
	m, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
	publisher.AssertExpectations(t)
}

func TestTrainerService_PublisherUnavailable(t *testing.T) {
	f := newTrainerFixture()
	publisher := new(testutil.MockStatusPublisher)
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	publisher.On("IsAvailable").Return(false)

	svc := NewTrainerService(f.loader, f.factory, f.runs, publisher, TrainerOptions{Hyperparameters: testHyperparameters()})
	_, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestTrainerService_Current(t *testing.T) {
	f := newTrainerFixture()
	f.loader.On("Load", mock.Anything).Return(testDataset(), nil)
	f.factory.On("New", mock.Anything, mock.Anything).Return(f.net, nil)
	f.runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(TrainerOptions{})
	_, err := svc.Current()
	assert.ErrorIs(t, err, domain.ErrModelNotReady)

	trained, err := svc.GetOrTrain(context.Background())
	require.NoError(t, err)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, trained, current)
}

func TestEvaluate(t *testing.T) {
	samples := testutil.Samples(30)

	res, err := Evaluate(context.Background(), &testutil.LabelEcho{}, samples)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Accuracy)
	assert.Equal(t, 30, res.Correct)
	assert.InDelta(t, 0.0, res.Loss, 1e-9)

	res, err = Evaluate(context.Background(), &testutil.LabelEcho{Offset: 3}, samples)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Accuracy)
	assert.InDelta(t, -math.Log(1e-7), res.Loss, 1e-6)
}

func TestEvaluate_Empty(t *testing.T) {
	res, err := Evaluate(context.Background(), &testutil.LabelEcho{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Accuracy)
}

func TestEvaluate_PredictError(t *testing.T) {
	net := new(testutil.MockNetwork)
	net.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := Evaluate(context.Background(), net, testutil.Samples(3))
	assert.Error(t, err)
}

func TestSplitValidation(t *testing.T) {
	train := testutil.Samples(100)
	fit, val := splitValidation(train, 0.1)
	assert.Len(t, fit, 90)
	assert.Len(t, val, 10)
	assert.Equal(t, train[90], val[0])

	fit, val = splitValidation(train, 0)
	assert.Len(t, fit, 100)
	assert.Empty(t, val)
}
