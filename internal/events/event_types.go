package events

import (
	"time"

	"github.com/scamguard/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAutoResponded EventType = "ticket_auto_responded"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketResponseAdded EventType = "ticket_response_added"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerEmail string              `json:"customer_email"`
	CustomerName  string              `json:"customer_name,omitempty"`
	Subject       string              `json:"subject"`
	Source        domain.TicketSource `json:"source"`
}

// TicketAutoRespondedPayload payload.
type TicketAutoRespondedPayload struct {
	CustomerEmail string              `json:"customer_email"`
	TemplateID    string              `json:"template_id"`
	ResponseText  string              `json:"response_text"`
	Source        domain.TicketSource `json:"source"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
	AssignedBy string `json:"assigned_by"`
	Reason     string `json:"reason"`
}

// TicketResponseAddedPayload payload.
type TicketResponseAddedPayload struct {
	ResponseID   string                `json:"response_id"`
	SenderType   domain.ResponseSender `json:"sender_type"`
	InternalNote bool                  `json:"internal_note"`
	BodyPreview  string                `json:"body_preview"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Level         string `json:"level"`
	Reason        string `json:"reason"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
