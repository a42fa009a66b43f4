package dto

import "time"

// TemplateRequest creates or updates an auto-response template.
type TemplateRequest struct {
	Keyword  string `json:"keyword"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Enabled  *bool  `json:"enabled"`
	Priority *int   `json:"priority"`
}

// TemplateResponse renders a template.
type TemplateResponse struct {
	ID          string    `json:"id"`
	Keyword     string    `json:"keyword"`
	Body        string    `json:"body"`
	Category    *string   `json:"category,omitempty"`
	Enabled     bool      `json:"enabled"`
	Priority    int       `json:"priority"`
	UsageCount  int64     `json:"usage_count"`
	SuccessRate float64   `json:"success_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
