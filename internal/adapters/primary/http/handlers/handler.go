package handlers

import (
	"html/template"

	"mnist-dashboard/internal/core/ports/output"
	"mnist-dashboard/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	trainer *services.TrainerService
	sampler *services.SamplerService
	runs    ports.TrainingRunRepository
}

func New(
	trainer *services.TrainerService,
	sampler *services.SamplerService,
	runs ports.TrainingRunRepository,
) *Handler {
	return &Handler{
		trainer: trainer,
		sampler: sampler,
		runs:    runs,
	}
}

// RegisterPages installs the HTML templates and the dashboard page.
func (h *Handler) RegisterPages(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))
	r.GET("/", h.Dashboard)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Predictions
	r.GET("/predictions", h.ListPredictions)

	// Model
	r.GET("/model", h.GetModel)

	// Training runs
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/latest", h.GetLatestRun)
}

func (h *Handler) RegisterHealth(r *gin.Engine, db Pinger) {
	r.GET("/healthz", Healthz(db))
	r.GET("/readyz", h.Readyz)
}
