package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "open"
	TicketStatusAutoResponded TicketStatus = "auto_responded"
	TicketStatusInProgress    TicketStatus = "in_progress"
	TicketStatusResolved      TicketStatus = "resolved"
	TicketStatusClosed        TicketStatus = "closed"
)

// TicketPriority enumerates handling urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketSource identifies the inbound channel a ticket originated from.
type TicketSource string

const (
	TicketSourceEmail     TicketSource = "email"
	TicketSourceWhatsApp  TicketSource = "whatsapp"
	TicketSourceDashboard TicketSource = "dashboard"
	TicketSourcePhone     TicketSource = "phone"
)

// OpenStatuses are the states considered unresolved for load counting and
// escalation sweeps.
var OpenStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress}

// Escalation reasons stamped by the sweep. The wording is fixed; admin
// dashboards filter on it.
const (
	EscalationReasonAdmin      = "No resolution within 24 hours"
	EscalationReasonSuperAdmin = "No resolution within 72 hours - CRITICAL"
)

// Ticket is the aggregate for customer support requests. Tickets are never
// hard-deleted; closed tickets are retained for audit.
type Ticket struct {
	ID                     string
	TicketNumber           string
	CustomerEmail          string
	CustomerName           *string
	CustomerPhone          *string
	Subject                string
	Body                   string
	Source                 TicketSource
	Status                 TicketStatus
	Priority               TicketPriority
	Category               *string
	AssignedTo             *string
	AutoResponseUsed       bool
	AutoResponseTemplateID *string
	EscalatedToAdmin       bool
	EscalatedToSuperAdmin  bool
	EscalationReason       *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	FirstResponseAt        *time.Time
	ResolvedAt             *time.Time
}

// IsOpen reports whether the ticket still counts against staff load.
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}

// DisplayName returns the customer name with the generic fallback used in
// outbound messages.
func (t *Ticket) DisplayName() string {
	if t.CustomerName != nil && *t.CustomerName != "" {
		return *t.CustomerName
	}
	return "Customer"
}
