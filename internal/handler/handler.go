// Package handler holds the request helpers shared by the resource handlers.
package handler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
)

const (
	QueryParam    = "q"
	DateFromParam = "date_from"
	DateToParam   = "date_to"
)

// ParseCriteria builds filter criteria from the query string. Keys outside
// allowed (and outside q, date_from and date_to) are rejected so a typo in a
// filter never silently returns everything.
func ParseCriteria(c *gin.Context, allowed []string) (filter.Criteria, error) {
	allow := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allow[k] = true
	}

	crit := filter.Criteria{Filters: map[string]string{}}
	var unknown []string
	for key, values := range c.Request.URL.Query() {
		value := ""
		if len(values) > 0 {
			value = strings.TrimSpace(values[len(values)-1])
		}
		switch {
		case key == QueryParam:
			crit.Query = value
		case key == DateFromParam:
			crit.DateFrom = value
		case key == DateToParam:
			crit.DateTo = value
		case allow[key]:
			if value != "" {
				crit.Filters[key] = value
			}
		default:
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return filter.Criteria{}, apperrors.BadRequest(
			fmt.Sprintf("unknown filter %s; allowed: %s", strings.Join(unknown, ", "), strings.Join(allowed, ", ")), nil)
	}
	if err := crit.Validate(); err != nil {
		return filter.Criteria{}, apperrors.BadRequest(err.Error(), err)
	}
	return crit, nil
}

// BindJSON decodes the request body, mapping decode failures to 400.
// Field validation is left to the services.
func BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.BadRequest("invalid request body: "+err.Error(), err)
	}
	return nil
}
