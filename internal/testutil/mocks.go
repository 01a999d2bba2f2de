package testutil

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"mnist-dashboard/internal/core/domain"
	"mnist-dashboard/internal/core/ports/output"
)

// MockTrainingRunRepo is a mock of TrainingRunRepository.
type MockTrainingRunRepo struct {
	mock.Mock
}

func (m *MockTrainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTrainingRunRepo) GetLatest(ctx context.Context) (*domain.TrainingRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingRun), args.Error(1)
}

func (m *MockTrainingRunRepo) List(ctx context.Context, filter ports.RunListFilter) ([]*domain.TrainingRun, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrainingRun), args.Error(1)
}

// MockStatusPublisher is a mock of StatusPublisher.
type MockStatusPublisher struct {
	mock.Mock
}

func (m *MockStatusPublisher) Publish(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStatusPublisher) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockDatasetSource is a mock of DatasetSource.
type MockDatasetSource struct {
	mock.Mock
}

func (m *MockDatasetSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDatasetSource) Name() string {
	return "mock"
}

// MockDatasetLoader is a mock of services.DatasetLoader.
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

// MockNetworkFactory is a mock of NetworkFactory.
type MockNetworkFactory struct {
	mock.Mock
}

func (m *MockNetworkFactory) New(arch domain.Architecture, hp domain.Hyperparameters) (ports.Network, error) {
	args := m.Called(arch, hp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Network), args.Error(1)
}

// MockNetwork is a mock of Network.
type MockNetwork struct {
	mock.Mock
}

func (m *MockNetwork) TrainEpoch(ctx context.Context, batches []domain.Batch) (float64, error) {
	args := m.Called(ctx, batches)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockNetwork) Predict(ctx context.Context, pixels []float32) ([]float32, error) {
	args := m.Called(ctx, pixels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}
