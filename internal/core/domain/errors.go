package domain

import "errors"

// ============================================================================
// Dataset Errors
// ============================================================================

var (
	ErrDataUnavailable  = errors.New("dataset unavailable")
	ErrChecksumMismatch = errors.New("dataset file checksum mismatch")
	ErrInvalidSample    = errors.New("invalid image sample")
)

// ============================================================================
// Training Errors
// ============================================================================

var (
	ErrTraining      = errors.New("training failed")
	ErrDiverged      = errors.New("training loss is not finite")
	ErrLowAccuracy   = errors.New("test accuracy below configured minimum")
	ErrModelNotReady = errors.New("model is not trained yet")
)

// ============================================================================
// Inference Errors
// ============================================================================

var (
	ErrInference    = errors.New("inference failed")
	ErrInvalidCount = errors.New("prediction count out of range")
)

// ============================================================================
// Training Run Registry Errors
// ============================================================================

var (
	ErrRunNotFound = errors.New("training run not found")
)
