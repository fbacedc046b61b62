package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/scheduling"
	"dental-clinic-server/internal/utils"
)

// respondEngineError maps the scheduling error taxonomy onto HTTP
// responses. Mirroring failures never reach here; the engine downgrades
// those to warnings before returning.
func respondEngineError(c *gin.Context, err error) {
	var validationErr *scheduling.ValidationError
	var notFoundErr *scheduling.NotFoundError
	var conflictErr *scheduling.ConflictError
	var invalidStateErr *scheduling.InvalidStateError
	var persistenceErr *scheduling.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		utils.BadRequest(c, validationErr.Error())
	case errors.As(err, &notFoundErr):
		utils.NotFound(c, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		utils.Conflict(c, "Doctor already has an appointment scheduled during this time slot", gin.H{
			"requestedTime": gin.H{
				"startTime": conflictErr.StartTime,
				"endTime":   conflictErr.EndTime,
			},
			"conflictingAppointments": conflictErr.Conflicts,
		})
	case errors.As(err, &invalidStateErr):
		utils.BadRequest(c, invalidStateErr.Error())
	case errors.Is(err, scheduling.ErrCalendarUnavailable):
		utils.ServiceUnavailable(c, err.Error())
	case errors.As(err, &persistenceErr):
		utils.InternalServerError(c, persistenceErr.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

func parseUintQuery(c *gin.Context, key string) (uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
