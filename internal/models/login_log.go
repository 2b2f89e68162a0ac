package models

import "time"

// LoginLog records a successful authentication, for the admin panel.
type LoginLog struct {
	ID        int       `json:"id"`
	SubjectID int       `json:"subject_id"`
	Role      string    `json:"role"`
	Identity  string    `json:"identity"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
