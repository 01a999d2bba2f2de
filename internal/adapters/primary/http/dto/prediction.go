package dto

import (
	"fmt"

	"mnist-dashboard/internal/core/domain"
)

type PredictionResponse struct {
	Index          int     `json:"index"`
	TrueLabel      int     `json:"trueLabel"`
	PredictedLabel int     `json:"predictedLabel"`
	Confidence     float32 `json:"confidence"`
	Correct        bool    `json:"correct"`
	Caption        string  `json:"caption"`
	ImagePNG       string  `json:"imagePng"`
}

type PredictionBatchResponse struct {
	Accuracy    float64              `json:"accuracy"`
	Banner      string               `json:"banner"`
	Count       int                  `json:"count"`
	Predictions []PredictionResponse `json:"predictions"`
}

// Caption is the two-line label shown under a thumbnail.
func Caption(p domain.Prediction) string {
	return fmt.Sprintf("True: %d\nPred: %d", p.TrueLabel, p.PredictedLabel)
}

func ToPredictionResponse(p domain.Prediction) (PredictionResponse, error) {
	img, err := ThumbnailBase64(p.Image)
	if err != nil {
		return PredictionResponse{}, err
	}
	return PredictionResponse{
		Index:          p.Index,
		TrueLabel:      p.TrueLabel,
		PredictedLabel: p.PredictedLabel,
		Confidence:     p.Confidence,
		Correct:        p.Correct(),
		Caption:        Caption(p),
		ImagePNG:       img,
	}, nil
}

func ToPredictionBatchResponse(eval domain.EvaluationResult, batch *domain.PredictionBatch) (*PredictionBatchResponse, error) {
	resp := &PredictionBatchResponse{
		Accuracy:    eval.Accuracy,
		Banner:      eval.Banner(),
		Count:       len(batch.Predictions),
		Predictions: make([]PredictionResponse, 0, len(batch.Predictions)),
	}
	for _, p := range batch.Predictions {
		pr, err := ToPredictionResponse(p)
		if err != nil {
			return nil, err
		}
		resp.Predictions = append(resp.Predictions, pr)
	}
	return resp, nil
}
