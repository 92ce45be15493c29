package handlers

import (
	"net/http"

	"CONTACTS_BACK-END/internal/dto"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/utils"
)

// HealthHandler handles health check related requests
type HealthHandler struct {
	db middleware.ReadinessChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db middleware.ReadinessChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// APIStatus answers GET /api
// @Summary API status
// @Tags health
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api [get]
func (h *HealthHandler) APIStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "API is running"})
}

// HealthCheck handles basic health check (no database)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck handles process liveness check
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "alive"})
}

// ReadinessCheck reports the database state tracked by the monitor
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || !h.db.Ready() {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "degraded",
			Details: map[string]any{"db": "not connected"},
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "ready",
		Details: map[string]any{"db": "ok"},
	})
}
