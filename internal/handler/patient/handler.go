package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/handler"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/patient"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
	r.GET("/patient/segments", h.GetSegments)
}

func (h *Handler) ListPatients(c *gin.Context) {
	crit, err := handler.ParseCriteria(c, model.PatientFilterKeys)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), crit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, patients, len(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) GetSegments(c *gin.Context) {
	segs, err := h.service.Segments(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, segs)
}
