// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker   func() bool
	lockHealthChecker func() bool
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	ImportLock string `json:"import_lock"`
	Timestamp  string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// A nil lockHealthChecker means imports run without the redis lock.
func NewHealthController(dbHealthChecker, lockHealthChecker func() bool) *HealthController {
	return &HealthController{
		dbHealthChecker:   dbHealthChecker,
		lockHealthChecker: lockHealthChecker,
	}
}

// Check handles GET /health requests.
// Only the database decides the status code; imports keep working while redis is down.
func (h *HealthController) Check(c *gin.Context) {
	status, dbStatus, code := "ok", "connected", http.StatusOK
	if h.dbHealthChecker == nil || !h.dbHealthChecker() {
		status, dbStatus, code = "degraded", "disconnected", http.StatusServiceUnavailable
	}

	lockStatus := "disabled"
	if h.lockHealthChecker != nil {
		lockStatus = "connected"
		if !h.lockHealthChecker() {
			lockStatus = "disconnected"
		}
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Database:   dbStatus,
		ImportLock: lockStatus,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
