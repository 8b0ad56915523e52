package appointment

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/handler"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/appointment"
	"github.com/jwalitptl/hospital-ops/internal/service/booking"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
	"github.com/jwalitptl/hospital-ops/pkg/validator"
)

type Handler struct {
	service  *appointment.Service
	booking  *booking.Service
	validate *validator.Validator
	now      func() time.Time
}

func NewHandler(service *appointment.Service, booking *booking.Service, validate *validator.Validator) *Handler {
	return &Handler{
		service:  service,
		booking:  booking,
		validate: validate,
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/slots", h.GetSlots)
	}

	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.BookAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}

	r.GET("/queue", h.GetQueue)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	crit, err := handler.ParseCriteria(c, model.DoctorFilterKeys)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	doctors, err := h.service.ListDoctors(c.Request.Context(), crit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, doctors, len(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.service.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

type slotsResponse struct {
	*appointment.SlotGrid
	Message string `json:"message,omitempty"`
}

// GetSlots returns the slot grid for ?date=, defaulting to today.
func (h *Handler) GetSlots(c *gin.Context) {
	date := c.DefaultQuery("date", h.now().Format(model.DateLayout))

	grid, err := h.service.GetSlotGrid(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp := slotsResponse{SlotGrid: grid}
	if len(grid.Slots) == 0 {
		resp.Message = "no slots"
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	crit, err := handler.ParseCriteria(c, model.AppointmentFilterKeys)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appts, err := h.service.ListAppointments(c.Request.Context(), crit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, appts, len(appts))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

// BookAppointment submits the booking form.
func (h *Handler) BookAppointment(c *gin.Context) {
	var draft booking.Draft
	if err := handler.BindJSON(c, &draft); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.booking.Book(c.Request.Context(), &draft)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, res)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req model.UpdateAppointmentStatusRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

// GetQueue projects today's queue unless ?date= is given.
func (h *Handler) GetQueue(c *gin.Context) {
	date := c.DefaultQuery("date", h.now().Format(model.DateLayout))
	if _, err := model.ParseDate(date); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	queues, err := h.service.Queue(c.Request.Context(), date, c.Query("department"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"date": date, "departments": queues})
}
