package session

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/session"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/session", h.GetSession)
}

// GetSession echoes the caller's verified session.
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := session.FromContext(c.Request.Context())
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no session")))
		return
	}
	httputil.RespondWithSuccess(c, s)
}
