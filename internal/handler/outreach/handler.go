package outreach

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/handler"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/outreach"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

type Handler struct {
	service *outreach.Service
}

func NewHandler(service *outreach.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	campaigns := r.Group("/campaigns")
	{
		campaigns.GET("", h.ListCampaigns)
		campaigns.POST("", h.CreateCampaign)
	}

	csr := r.Group("/csr")
	{
		csr.GET("/analytics", h.GetAnalytics)
		csr.GET("/volunteers", h.ListVolunteers)
	}
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	crit, err := handler.ParseCriteria(c, model.CampaignFilterKeys)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	campaigns, err := h.service.ListCampaigns(c.Request.Context(), crit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, campaigns, len(campaigns))
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req model.CreateCampaignRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	campaign, err := h.service.CreateCampaign(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, campaign)
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, analytics)
}

func (h *Handler) ListVolunteers(c *gin.Context) {
	crit, err := handler.ParseCriteria(c, model.VolunteerFilterKeys)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	volunteers, err := h.service.ListVolunteers(c.Request.Context(), crit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, volunteers, len(volunteers))
}
