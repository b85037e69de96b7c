package dto

import "time"

type HealthStatus struct {
	Status    string    `json:"status"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}
