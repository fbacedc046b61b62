package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/store"
	"dental-clinic-server/internal/utils"
)

// CatalogHandler serves the read-only doctor and service listings.
type CatalogHandler struct {
	Store *store.Store
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(st *store.Store) *CatalogHandler {
	return &CatalogHandler{Store: st}
}

// ListDoctors fetches all active doctors.
func (h *CatalogHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Store.ListDoctors(true)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID fetches a single doctor by ID.
func (h *CatalogHandler) GetDoctorByID(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid doctor ID")
		return
	}

	doctor, err := h.Store.GetDoctor(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// ListServices fetches the services menu, optionally filtered by name.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.Store.ListServices(c.Query("name"))
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch services: "+err.Error())
		return
	}
	utils.Success(c, "Services fetched successfully", services)
}

// GetServiceByID fetches a single service by ID.
func (h *CatalogHandler) GetServiceByID(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid service ID")
		return
	}

	service, err := h.Store.GetService(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Service not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Service fetched successfully", service)
}
