package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-ops/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Fields  []errors.FieldError `json:"fields,omitempty"`
}

// ListResponse wraps filtered collections
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// StatusCode maps an application error code to an HTTP status.
func StatusCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrValidation:
		return http.StatusUnprocessableEntity
	case errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithList sends a collection along with its size
func RespondWithList(c *gin.Context, items interface{}, total int) {
	RespondWithSuccess(c, ListResponse{Items: items, Total: total})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	body := &Error{Code: statusCode, Message: "internal server error"}

	if appErr, ok := errors.As(err); ok {
		statusCode = StatusCode(appErr.Code)
		body = &Error{
			Code:    statusCode,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		}
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error:   body,
	})
}
