package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"mnist-dashboard/internal/adapters/primary/http/dto"
	"mnist-dashboard/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListPredictions(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(domain.DefaultPredictionCount)))
	if err != nil || count < domain.MinPredictionCount || count > domain.MaxPredictionCount {
		mapDomainError(c, fmt.Errorf("%w: count must be between %d and %d",
			domain.ErrInvalidCount, domain.MinPredictionCount, domain.MaxPredictionCount))
		return
	}

	model, err := h.trainer.GetOrTrain(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	batch, err := h.sampler.Sample(c.Request.Context(), model.Network, model.Test, count)
	if err != nil {
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("prediction failed")
		mapDomainError(c, err)
		return
	}

	resp, err := dto.ToPredictionBatchResponse(model.Evaluation, batch)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
