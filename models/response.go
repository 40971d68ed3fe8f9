package models

import "time"

// Tracker is a persisted watch on one page for one user.
type Tracker struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
	// ApplicationID mirrors SearchTerm for clients of the legacy field.
	ApplicationID string     `json:"application_id"`
	TargetURL     string     `json:"target_url"`
	SearchTerm    string     `json:"search_term"`
	Selector      string     `json:"selector,omitempty"`
	LastStatus    string     `json:"last_status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Profile holds per-user contact details used for notifications.
type Profile struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RefreshResponse is the response for refresh and manual status changes.
type RefreshResponse struct {
	Tracker          *Tracker `json:"tracker"`
	OldStatus        string   `json:"old_status"`
	NewStatus        string   `json:"new_status"`
	StatusKind       string   `json:"status_kind,omitempty"`
	StatusChanged    bool     `json:"status_changed"`
	NotificationSent bool     `json:"notification_sent"`
}

// ScrapeResponse is the response for one-off pipeline runs.
type ScrapeResponse struct {
	Result     string `json:"result"`
	StatusKind string `json:"status_kind"`
	TargetURL  string `json:"target_url,omitempty"`
	SearchTerm string `json:"search_term,omitempty"`
}

// PreviewResponse is the response for POST /api/v1/preview.
type PreviewResponse struct {
	Success bool `json:"success"`

	// Title is the readability title, falling back to <title>.
	Title string `json:"title"`

	// Markdown is the main content rendered as Markdown.
	Markdown string `json:"markdown"`

	// SourceURL is the requested page.
	SourceURL string `json:"source_url"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse wraps an ErrorDetail for handlers without a richer response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	Version         string `json:"version"`
	DemoMode        bool   `json:"demo_mode"`
	NotifyChannels  int    `json:"notify_channels"`
	RegisteredSites int    `json:"registered_sites"`
}

// PhoneUpdateResponse is the response for PUT /api/v1/profile/phone.
type PhoneUpdateResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	OldPhone string `json:"old_phone"`
	NewPhone string `json:"new_phone"`
}

// NotificationResponse is the response for POST /api/v1/notify/test.
type NotificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
