package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
	"dental-clinic-server/internal/utils"
)

// LeadHandler handles lead related requests.
type LeadHandler struct {
	Store *store.Store
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(st *store.Store) *LeadHandler {
	return &LeadHandler{Store: st}
}

// CreateLeadRequest represents the request body for creating a lead.
type CreateLeadRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

// CreateLead creates a new lead record.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	lead := models.Lead{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Source: req.Source,
		Status: models.LeadNew,
		Notes:  req.Notes,
	}
	if err := h.Store.CreateLead(&lead); err != nil {
		utils.InternalServerError(c, "Failed to create lead: "+err.Error())
		return
	}
	utils.Created(c, "Lead created successfully", lead)
}

// ListLeads fetches leads, optionally filtered by status.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	status := models.LeadStatus(c.Query("status"))
	if status != "" && !validLeadStatus(status) {
		utils.BadRequest(c, "Invalid lead status: "+string(status))
		return
	}

	leads, err := h.Store.ListLeads(status)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch leads: "+err.Error())
		return
	}
	utils.Success(c, "Leads fetched successfully", leads)
}

// GetLeadByID fetches a single lead by ID.
func (h *LeadHandler) GetLeadByID(c *gin.Context) {
	lead, err := h.Store.GetLead(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Lead not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Lead fetched successfully", lead)
}

// UpdateLeadRequest represents the allow-listed fields a caller may
// change on a lead.
type UpdateLeadRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Source *string `json:"source"`
	Notes  *string `json:"notes"`
}

// UpdateLead applies a partial update to a lead record.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	var req UpdateLeadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := c.Param("id")
	err := h.Store.UpdateLead(id, store.LeadUpdate{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Source: req.Source,
		Notes:  req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Lead not found")
		} else {
			utils.InternalServerError(c, "Failed to update lead: "+err.Error())
		}
		return
	}

	lead, err := h.Store.GetLead(id)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload lead: "+err.Error())
		return
	}
	utils.Success(c, "Lead updated successfully", lead)
}

// UpdateLeadStatusRequest represents a lead status transition request.
type UpdateLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" binding:"required"`
}

// UpdateLeadStatus transitions a lead's qualification status.
func (h *LeadHandler) UpdateLeadStatus(c *gin.Context) {
	var req UpdateLeadStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !validLeadStatus(req.Status) {
		utils.BadRequest(c, "Invalid lead status: "+string(req.Status))
		return
	}

	id := c.Param("id")
	if err := h.Store.UpdateLead(id, store.LeadUpdate{Status: &req.Status}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Lead not found")
		} else {
			utils.InternalServerError(c, "Failed to update lead status: "+err.Error())
		}
		return
	}

	lead, err := h.Store.GetLead(id)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload lead: "+err.Error())
		return
	}
	utils.Success(c, "Lead status updated successfully", lead)
}

func validLeadStatus(status models.LeadStatus) bool {
	switch status {
	case models.LeadNew, models.LeadContacted, models.LeadQualified,
		models.LeadConverted, models.LeadLost:
		return true
	}
	return false
}
