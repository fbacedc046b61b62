package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/scheduling"
	"dental-clinic-server/internal/store"
	"dental-clinic-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Engine *scheduling.Engine
	Store  *store.Store
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(engine *scheduling.Engine, st *store.Store) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine, Store: st}
}

// CreateAppointmentRequest represents the request body for creating an
// appointment.
type CreateAppointmentRequest struct {
	PatientID string    `json:"patientId" binding:"required,uuid"`
	DoctorID  uint      `json:"doctorId" binding:"required"`
	ServiceID *uint     `json:"serviceId"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	Reason    string    `json:"reason"`
}

func (r CreateAppointmentRequest) toEngine() scheduling.CreateRequest {
	return scheduling.CreateRequest{
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		ServiceID: r.ServiceID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Reason:    r.Reason,
	}
}

// CreateAppointment books a new appointment and mirrors it to the
// doctor's calendar. A calendar failure yields 207, not an error.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Engine.Create(c.Request.Context(), req.toEngine())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Warning != "" {
		utils.PartialSuccess(c, "Appointment saved but calendar sync failed", result.Warning, result)
		return
	}
	utils.Created(c, "Appointment created successfully", result)
}

// ListAppointments fetches appointments with optional filters.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	var filter store.AppointmentFilter
	filter.PatientID = c.Query("patientId")
	filter.Status = models.AppointmentStatus(c.Query("status"))
	if doctorID, ok := parseUintQuery(c, "doctorId"); ok {
		filter.DoctorID = doctorID
	}
	if from, ok := parseTimeQuery(c, "from"); ok {
		filter.From = from
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		filter.To = to
	}

	appointments, err := h.Store.FindAppointments(filter)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, err := h.Store.GetAppointment(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentRequest represents the allow-listed fields a caller
// may change on an appointment.
type UpdateAppointmentRequest struct {
	StartTime  *time.Time                `json:"startTime"`
	EndTime    *time.Time                `json:"endTime"`
	ReasonNote *string                   `json:"reasonNote"`
	ServiceID  *uint                     `json:"serviceId"`
	Status     *models.AppointmentStatus `json:"status"`
}

// UpdateAppointment applies a partial update; time and status changes are
// best-effort mirrored onto the calendar event.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		utils.BadRequest(c, "Invalid status: "+string(*req.Status))
		return
	}

	result, err := h.Engine.Update(c.Request.Context(), c.Param("id"), store.AppointmentUpdate{
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ReasonNote: req.ReasonNote,
		ServiceID:  req.ServiceID,
		Status:     req.Status,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Warning != "" {
		utils.PartialSuccess(c, "Appointment updated but calendar sync failed", result.Warning, result.Appointment)
		return
	}
	utils.Success(c, "Appointment updated successfully", result.Appointment)
}

// UpdateAppointmentStatusRequest represents a status transition request.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus transitions an appointment's status and
// annotates the calendar event title for statuses with a marker.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !validStatus(req.Status) {
		utils.BadRequest(c, "Invalid status: "+string(req.Status))
		return
	}

	result, err := h.Engine.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Warning != "" {
		utils.PartialSuccess(c, "Status updated but calendar sync failed", result.Warning, result.Appointment)
		return
	}
	utils.Success(c, "Appointment status updated successfully", result.Appointment)
}

// CancelAppointment marks an appointment CANCELLED, keeping the record.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	result, err := h.Engine.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Warning != "" {
		utils.PartialSuccess(c, "Appointment cancelled but calendar sync failed", result.Warning, result.Appointment)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", result.Appointment)
}

// RescheduleAppointment moves a SCHEDULED appointment to a new slot.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := h.Engine.Reschedule(c.Request.Context(), c.Param("id"), req.toEngine())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if result.Warning != "" {
		utils.PartialSuccess(c, "Appointment rescheduled but calendar sync failed", result.Warning, result)
		return
	}
	utils.Success(c, "Appointment rescheduled successfully", result)
}

// DeleteAppointment permanently removes an appointment and its mirrored
// calendar event. Use the cancel endpoint to keep the record.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	result, err := h.Engine.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", result)
}

// BulkDeleteByDate deletes every appointment on a calendar day. With
// ?dryRun=true it only previews the candidates.
func (h *AppointmentHandler) BulkDeleteByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.BadRequest(c, "date is required (YYYY-MM-DD)")
		return
	}
	dryRun := c.Query("dryRun") == "true" || c.Query("dry_run") == "true"

	result, err := h.Engine.BulkDeleteByDate(c.Request.Context(), date, dryRun)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Bulk delete completed", result)
}

// GetCalendarSlots lists available slots for a doctor in a time range.
func (h *AppointmentHandler) GetCalendarSlots(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start")
	if !ok {
		utils.BadRequest(c, "start is required (RFC 3339 datetime)")
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		utils.BadRequest(c, "end is required (RFC 3339 datetime)")
		return
	}

	slots, err := h.Engine.Availability(c.Request.Context(), c.Query("doctorName"), start, end)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.Success(c, "Available slots fetched successfully", slots)
}

func validStatus(status models.AppointmentStatus) bool {
	switch status {
	case models.StatusScheduled, models.StatusCancelled, models.StatusCompleted,
		models.StatusNoShow, models.StatusPending, models.StatusPendingSync,
		models.StatusRescheduled, models.StatusConfirmed, models.StatusReminderSent:
		return true
	}
	return false
}
