package dto

import (
	"time"

	"mnist-dashboard/internal/core/domain"
)

type TrainingRunResponse struct {
	ID                 string                 `json:"id"`
	StartedAt          time.Time              `json:"startedAt"`
	FinishedAt         time.Time              `json:"finishedAt"`
	DurationSeconds    float64                `json:"durationSeconds"`
	Architecture       string                 `json:"architecture"`
	Hyperparameters    domain.Hyperparameters `json:"hyperparameters"`
	TrainSamples       int                    `json:"trainSamples"`
	ValidationSamples  int                    `json:"validationSamples"`
	TestSamples        int                    `json:"testSamples"`
	FinalLoss          float64                `json:"finalLoss"`
	ValidationAccuracy float64                `json:"validationAccuracy"`
	TestAccuracy       float64                `json:"testAccuracy"`
	Status             string                 `json:"status"`
}

type TrainingRunListResponse struct {
	Items []TrainingRunResponse `json:"items"`
	Size  int                   `json:"size"`
}

type ModelResponse struct {
	Accuracy float64             `json:"accuracy"`
	Loss     float64             `json:"loss"`
	Banner   string              `json:"banner"`
	Run      TrainingRunResponse `json:"run"`
}

func ToTrainingRunResponse(r *domain.TrainingRun) TrainingRunResponse {
	return TrainingRunResponse{
		ID:                 r.ID.String(),
		StartedAt:          r.StartedAt,
		FinishedAt:         r.FinishedAt,
		DurationSeconds:    r.Duration().Seconds(),
		Architecture:       r.Architecture,
		Hyperparameters:    r.Hyperparameters,
		TrainSamples:       r.TrainSamples,
		ValidationSamples:  r.ValidationSamples,
		TestSamples:        r.TestSamples,
		FinalLoss:          r.FinalLoss,
		ValidationAccuracy: r.ValidationAccuracy,
		TestAccuracy:       r.TestAccuracy,
		Status:             string(r.Status),
	}
}

func ToTrainingRunListResponse(runs []*domain.TrainingRun) TrainingRunListResponse {
	items := make([]TrainingRunResponse, len(runs))
	for i, r := range runs {
		items[i] = ToTrainingRunResponse(r)
	}
	return TrainingRunListResponse{Items: items, Size: len(items)}
}

func ToModelResponse(m *domain.TrainedModel) ModelResponse {
	return ModelResponse{
		Accuracy: m.Evaluation.Accuracy,
		Loss:     m.Evaluation.Loss,
		Banner:   m.Evaluation.Banner(),
		Run:      ToTrainingRunResponse(&m.Run),
	}
}
