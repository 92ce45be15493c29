package dto

// HealthResponse represents the response structure for health checks
type HealthResponse struct {
	Status  string `json:"status"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is a bare message body
type MessageResponse struct {
	Message string `json:"message"`
}
