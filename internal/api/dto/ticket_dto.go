package dto

import (
	"time"

	"github.com/scamguard/support-service/internal/domain"
)

// CreateTicketRequest is the dashboard submission payload.
type CreateTicketRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// AddResponseRequest appends a message to a ticket thread.
type AddResponseRequest struct {
	Message      string              `json:"message"`
	InternalNote bool                `json:"internal_note"`
	Attachments  []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest carries attachment metadata on inbound payloads.
type AttachmentRequest struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

// TicketCreatedResponse reports the routing outcome for a new ticket.
type TicketCreatedResponse struct {
	TicketID      string  `json:"ticket_id"`
	TicketNumber  string  `json:"ticket_number"`
	AutoResponded bool    `json:"auto_responded"`
	AssignedTo    *string `json:"assigned_to,omitempty"`
}

// TicketSummary is the list-view projection.
type TicketSummary struct {
	ID               string                `json:"id"`
	TicketNumber     string                `json:"ticket_number"`
	CustomerEmail    string                `json:"customer_email"`
	CustomerName     *string               `json:"customer_name,omitempty"`
	Subject          string                `json:"subject"`
	Source           domain.TicketSource   `json:"source"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	AssignedTo       *string               `json:"assigned_to,omitempty"`
	EscalatedToAdmin bool                  `json:"escalated_to_admin"`
	EscalatedToSuper bool                  `json:"escalated_to_super_admin"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// TicketDetailResponse is the full ticket view with its thread.
type TicketDetailResponse struct {
	TicketSummary
	CustomerPhone    *string                  `json:"customer_phone,omitempty"`
	Body             string                   `json:"body"`
	Category         *string                  `json:"category,omitempty"`
	EscalationReason *string                  `json:"escalation_reason,omitempty"`
	FirstResponseAt  *time.Time               `json:"first_response_at,omitempty"`
	ResolvedAt       *time.Time               `json:"resolved_at,omitempty"`
	Responses        []TicketResponseResponse `json:"responses"`
}

// TicketResponseResponse renders one thread entry.
type TicketResponseResponse struct {
	ID           string                `json:"id"`
	SenderType   domain.ResponseSender `json:"sender_type"`
	SenderID     *string               `json:"sender_id,omitempty"`
	SenderEmail  *string               `json:"sender_email,omitempty"`
	Message      string                `json:"message"`
	InternalNote bool                  `json:"internal_note"`
	Channel      domain.TicketSource   `json:"channel"`
	Attachments  []AttachmentResponse  `json:"attachments"`
	CreatedAt    time.Time             `json:"created_at"`
}

// AssignmentResponse renders one assignment audit entry.
type AssignmentResponse struct {
	ID         string    `json:"id"`
	AssignedTo string    `json:"assigned_to"`
	AssignedBy string    `json:"assigned_by"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentResponse renders attachment metadata.
type AttachmentResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}
