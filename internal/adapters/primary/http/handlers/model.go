package handlers

import (
	"net/http"

	"mnist-dashboard/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
)

// GetModel describes the cached model. It never starts training.
func (h *Handler) GetModel(c *gin.Context) {
	model, err := h.trainer.Current()
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelResponse(model))
}
