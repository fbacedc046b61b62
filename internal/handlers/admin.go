package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/utils"
)

// AdminHandler exposes operational calendar credential endpoints.
type AdminHandler struct {
	Sessions *calendar.SessionCache
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sessions *calendar.SessionCache) *AdminHandler {
	return &AdminHandler{Sessions: sessions}
}

// ValidateCalendarCredentials checks whether a calendar session can be
// established with the configured credentials.
func (h *AdminHandler) ValidateCalendarCredentials(c *gin.Context) {
	if err := h.Sessions.Validate(c.Request.Context()); err != nil {
		var credErr *calendar.CredentialError
		permanent := errors.As(err, &credErr) && credErr.Permanent
		utils.Success(c, "Calendar credential check completed", gin.H{
			"valid":     false,
			"permanent": permanent,
			"error":     err.Error(),
		})
		return
	}
	utils.Success(c, "Calendar credential check completed", gin.H{"valid": true})
}

// RefreshCalendarSession proactively refreshes the calendar session,
// including the delegated token when one is in use.
func (h *AdminHandler) RefreshCalendarSession(c *gin.Context) {
	if err := h.Sessions.Refresh(c.Request.Context()); err != nil {
		var credErr *calendar.CredentialError
		if errors.As(err, &credErr) && credErr.Permanent {
			utils.BadRequest(c, err.Error())
			return
		}
		utils.ServiceUnavailable(c, err.Error())
		return
	}
	utils.Success(c, "Calendar session refreshed", nil)
}

// HealthCheck reports process liveness.
func HealthCheck(c *gin.Context) {
	utils.Success(c, "ok", gin.H{"status": "healthy"})
}
