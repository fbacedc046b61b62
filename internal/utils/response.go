package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// PartialSuccess sends a 207 Multi-Status response: the store mutation
// committed but the calendar mirror did not. Distinguishable from both
// full success and failure so callers can rely on the sweep instead of
// retrying.
func PartialSuccess(c *gin.Context, message, warning string, data interface{}) {
	c.JSON(http.StatusMultiStatus, ResponseData{
		Status:  http.StatusMultiStatus,
		Message: message,
		Data:    data,
		Warning: warning,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict response carrying the conflicting
// appointment summaries.
func Conflict(c *gin.Context, errorMessage string, details interface{}) {
	c.JSON(http.StatusConflict, ResponseData{
		Status:  http.StatusConflict,
		Message: "An error occurred",
		Error:   errorMessage,
		Data:    details,
	})
}

// ServiceUnavailable sends a 503 response, used when the calendar
// provider cannot be reached.
func ServiceUnavailable(c *gin.Context, errorMessage string) {
	Error(c, http.StatusServiceUnavailable, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}
