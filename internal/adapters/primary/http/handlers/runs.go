package handlers

import (
	"net/http"
	"strconv"

	"mnist-dashboard/internal/adapters/primary/http/dto"
	"mnist-dashboard/internal/core/ports/output"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	runs, err := h.runs.List(c.Request.Context(), ports.RunListFilter{
		Status: c.Query("status"),
		Limit:  limit,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTrainingRunListResponse(runs))
}

func (h *Handler) GetLatestRun(c *gin.Context) {
	run, err := h.runs.GetLatest(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTrainingRunResponse(run))
}
