package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/store"
	"dental-clinic-server/internal/utils"
)

// PatientHandler handles patient related requests.
type PatientHandler struct {
	Store *store.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(st *store.Store) *PatientHandler {
	return &PatientHandler{Store: st}
}

// CreatePatientRequest represents the request body for creating a patient.
type CreatePatientRequest struct {
	FirstName         string     `json:"firstName" binding:"required"`
	LastName          string     `json:"lastName"`
	DOB               *time.Time `json:"dob"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	InsuranceProvider string     `json:"insuranceProvider"`
	IsMinor           bool       `json:"isMinor"`
	GuardianName      string     `json:"guardianName"`
	GuardianContact   string     `json:"guardianContact"`
	ConsentApproved   bool       `json:"consentApproved"`
}

// CreatePatient creates a new patient record.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		DOB:               req.DOB,
		Phone:             req.Phone,
		Email:             req.Email,
		InsuranceProvider: req.InsuranceProvider,
		IsMinor:           req.IsMinor,
		GuardianName:      req.GuardianName,
		GuardianContact:   req.GuardianContact,
		ConsentApproved:   req.ConsentApproved,
	}
	if err := h.Store.CreatePatient(&patient); err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}
	utils.Created(c, "Patient created successfully", patient)
}

// ListPatients fetches patients with optional name/phone filters.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.Store.FindPatients(store.PatientFilter{
		Name:  c.Query("name"),
		Phone: c.Query("phone"),
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches a single patient by ID.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patient, err := h.Store.GetPatient(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the allow-listed fields a caller may
// change on a patient.
type UpdatePatientRequest struct {
	FirstName         *string    `json:"firstName"`
	LastName          *string    `json:"lastName"`
	DOB               *time.Time `json:"dob"`
	Phone             *string    `json:"phone"`
	Email             *string    `json:"email"`
	InsuranceProvider *string    `json:"insuranceProvider"`
	IsMinor           *bool      `json:"isMinor"`
	GuardianName      *string    `json:"guardianName"`
	GuardianContact   *string    `json:"guardianContact"`
	ConsentApproved   *bool      `json:"consentApproved"`
}

// UpdatePatient applies a partial update to a patient record.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := c.Param("id")
	err := h.Store.UpdatePatient(id, store.PatientUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		DOB:               req.DOB,
		Phone:             req.Phone,
		Email:             req.Email,
		InsuranceProvider: req.InsuranceProvider,
		IsMinor:           req.IsMinor,
		GuardianName:      req.GuardianName,
		GuardianContact:   req.GuardianContact,
		ConsentApproved:   req.ConsentApproved,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		}
		return
	}

	patient, err := h.Store.GetPatient(id)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}

// VerifyPatientRequest represents a patient identity lookup by name plus
// date of birth, or by phone.
type VerifyPatientRequest struct {
	Name  string     `json:"name"`
	DOB   *time.Time `json:"dob"`
	Phone string     `json:"phone"`
}

// VerifyPatient matches an existing patient by name+dob or phone and
// returns the matching record, if any.
func (h *PatientHandler) VerifyPatient(c *gin.Context) {
	var req VerifyPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Phone == "" && (req.Name == "" || req.DOB == nil) {
		utils.BadRequest(c, "Provide phone, or name and dob")
		return
	}

	filter := store.PatientFilter{Phone: req.Phone}
	if req.Phone == "" {
		filter = store.PatientFilter{Name: req.Name}
	}
	patients, err := h.Store.FindPatients(filter)
	if err != nil {
		utils.InternalServerError(c, "Failed to look up patients: "+err.Error())
		return
	}

	for _, patient := range patients {
		if req.Phone != "" && patient.Phone == req.Phone {
			utils.Success(c, "Patient verified", gin.H{"verified": true, "patient": patient})
			return
		}
		if req.Name != "" && req.DOB != nil && patient.DOB != nil &&
			strings.EqualFold(patient.FullName(), strings.TrimSpace(req.Name)) &&
			patient.DOB.Equal(*req.DOB) {
			utils.Success(c, "Patient verified", gin.H{"verified": true, "patient": patient})
			return
		}
	}

	utils.Success(c, "No matching patient", gin.H{"verified": false})
}
