package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"mnist-dashboard/internal/adapters/primary/http/dto"
	"mnist-dashboard/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

type thumbnailView struct {
	Index   int
	Caption string
	Correct bool
	Image   template.URL
}

type dashboardView struct {
	Banner     string
	Count      int
	Min        int
	Max        int
	Thumbnails []thumbnailView
	Error      string
}

// Dashboard renders the prediction grid. Training happens on the first visit
// and blocks the request until it finishes.
func (h *Handler) Dashboard(c *gin.Context) {
	count := parseCount(c.Query("count"))
	logger := log.WithFields(log.Fields{
		"count":      count,
		"request_id": c.GetString("request_id"),
	})

	model, err := h.trainer.GetOrTrain(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("model unavailable")
		c.HTML(http.StatusServiceUnavailable, "error.html", gin.H{"Message": err.Error()})
		return
	}

	view := dashboardView{
		Banner: model.Evaluation.Banner(),
		Count:  count,
		Min:    domain.MinPredictionCount,
		Max:    domain.MaxPredictionCount,
	}

	batch, err := h.sampler.Sample(c.Request.Context(), model.Network, model.Test, count)
	if err != nil {
		logger.WithError(err).Warn("prediction failed")
		view.Error = err.Error()
		c.HTML(http.StatusOK, "dashboard.html", view)
		return
	}

	for _, p := range batch.Predictions {
		b64, err := dto.ThumbnailBase64(p.Image)
		if err != nil {
			logger.WithError(err).Warn("thumbnail failed")
			view.Error = err.Error()
			break
		}
		view.Thumbnails = append(view.Thumbnails, thumbnailView{
			Index:   p.Index,
			Caption: dto.Caption(p),
			Correct: p.Correct(),
			Image:   template.URL("data:image/png;base64," + b64),
		})
	}

	c.HTML(http.StatusOK, "dashboard.html", view)
}

// parseCount reads the control value, defaulting when absent or malformed and
// clamping to the control range.
func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return domain.DefaultPredictionCount
	}
	return domain.ClampCount(n)
}
