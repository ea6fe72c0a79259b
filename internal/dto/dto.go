package dto

import "time"

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type KeepAliveResponse struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`
}

type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	OwnerID     string    `json:"owner_id"`
}

type DispatchResponse struct {
	Owners   int `json:"owners"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}
