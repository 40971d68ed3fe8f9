package models

// ScrapeRequest is one invocation of the extraction pipeline.
type ScrapeRequest struct {
	// TargetURL is the page to check. Required.
	TargetURL string `json:"target_url" binding:"required,url"`

	// Selector is an optional CSS selector, or a regular expression when
	// prefixed with "regex:".
	Selector string `json:"selector,omitempty"`

	// SearchTerm is the value to look for (e.g. a roll number).
	SearchTerm string `json:"search_term"`
}

// TrackerCreate is the payload for POST /api/v1/trackers.
type TrackerCreate struct {
	Name       string `json:"name" binding:"required"`
	TargetURL  string `json:"target_url" binding:"required,url"`
	SearchTerm string `json:"search_term" binding:"required"`
	Selector   string `json:"selector,omitempty"`
}

// StatusChange is the payload for PUT /api/v1/trackers/:id/status.
type StatusChange struct {
	NewStatus string `json:"new_status" binding:"required"`
}

// PhoneUpdate is the payload for PUT /api/v1/profile/phone.
type PhoneUpdate struct {
	// PhoneNumber in E.164 format, e.g. +919876543210.
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
}

// TestNotification is the payload for POST /api/v1/notify/test.
type TestNotification struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
	Message     string `json:"message,omitempty"`
}

// PreviewRequest is the payload for POST /api/v1/preview.
type PreviewRequest struct {
	URL string `json:"url" binding:"required,url"`

	// MaxAge in milliseconds; a cached preview younger than this is reused.
	// Default: 0 (always fetch).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}
