package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusSucceeded      RunStatus = "SUCCEEDED"
	RunStatusBelowThreshold RunStatus = "BELOW_THRESHOLD"
)

// TrainingRun records one completed training of the classifier.
type TrainingRun struct {
	ID                 uuid.UUID
	StartedAt          time.Time
	FinishedAt         time.Time
	Architecture       string
	Hyperparameters    Hyperparameters
	TrainSamples       int
	ValidationSamples  int
	TestSamples        int
	FinalLoss          float64
	ValidationAccuracy float64
	TestAccuracy       float64
	Status             RunStatus
}

// Duration of the run.
func (r TrainingRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
