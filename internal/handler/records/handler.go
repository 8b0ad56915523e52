package records

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/handler"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/records"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

// Handler serves the read-only dashboard lists.
type Handler struct {
	Beds        *records.Lister[model.Bed, *model.Bed]
	Documents   *records.Lister[model.Document, *model.Document]
	Tasks       *records.Lister[model.Task, *model.Task]
	Vitals      *records.Lister[model.VitalsRecord, *model.VitalsRecord]
	StaffLeaves *records.Lister[model.StaffLeave, *model.StaffLeave]
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/beds", list(h.Beds.List, model.BedFilterKeys))
	r.GET("/documents", list(h.Documents.List, model.DocumentFilterKeys))
	r.GET("/tasks", list(h.Tasks.List, model.TaskFilterKeys))
	r.GET("/vitals", list(h.Vitals.List, model.VitalsFilterKeys))
	r.GET("/staff-leaves", list(h.StaffLeaves.List, model.StaffLeaveFilterKeys))
}

func list[T any](fetch func(context.Context, filter.Criteria) ([]T, error), keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		crit, err := handler.ParseCriteria(c, keys)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		items, err := fetch(c.Request.Context(), crit)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithList(c, items, len(items))
	}
}
