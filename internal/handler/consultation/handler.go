package consultation

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/handler"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/consultation"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.GET("", h.ListConsultations)
		consultations.POST("", h.CreateConsultation)
	}
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req model.CreateConsultationRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.CreateConsultation(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListConsultations(c *gin.Context) {
	list, err := h.service.ListConsultations(c.Request.Context(), c.Query("patient_id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, list, len(list))
}
