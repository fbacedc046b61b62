package routes

import (
	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/calendar"
	"dental-clinic-server/internal/handlers"
	"dental-clinic-server/internal/scheduling"
	"dental-clinic-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, st *store.Store, engine *scheduling.Engine, sessions *calendar.SessionCache) {
	// Initialize handlers
	appointmentHandler := handlers.NewAppointmentHandler(engine, st)
	patientHandler := handlers.NewPatientHandler(st)
	catalogHandler := handlers.NewCatalogHandler(st)
	leadHandler := handlers.NewLeadHandler(st)
	adminHandler := handlers.NewAdminHandler(sessions)

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	{
		// Appointment routes
		appointmentRoutes := api.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.POST("/:id/reschedule", appointmentHandler.RescheduleAppointment)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
			appointmentRoutes.DELETE("", appointmentHandler.BulkDeleteByDate)
		}

		// Patient routes
		patientRoutes := api.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.ListPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.PATCH("/:id", patientHandler.UpdatePatient)
			patientRoutes.POST("/verify", patientHandler.VerifyPatient)
		}

		// Doctor and service catalog routes
		api.GET("/doctors", catalogHandler.ListDoctors)
		api.GET("/doctors/:id", catalogHandler.GetDoctorByID)
		api.GET("/services", catalogHandler.ListServices)
		api.GET("/services/:id", catalogHandler.GetServiceByID)

		// Lead routes
		leadRoutes := api.Group("/leads")
		{
			leadRoutes.POST("", leadHandler.CreateLead)
			leadRoutes.GET("", leadHandler.ListLeads)
			leadRoutes.GET("/:id", leadHandler.GetLeadByID)
			leadRoutes.PATCH("/:id", leadHandler.UpdateLead)
			leadRoutes.PATCH("/:id/status", leadHandler.UpdateLeadStatus)
		}

		// Calendar availability
		api.GET("/calendar/slots", appointmentHandler.GetCalendarSlots)

		// Administrative calendar credential endpoints
		adminRoutes := api.Group("/admin/calendar")
		{
			adminRoutes.GET("/validate", adminHandler.ValidateCalendarCredentials)
			adminRoutes.POST("/refresh", adminHandler.RefreshCalendarSession)
		}
	}
}
