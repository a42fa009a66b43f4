package domain

import "time"

// AssignedBySystem marks assignments made by the balancer rather than a
// staff member.
const AssignedBySystem = "system"

// TicketAssignment is an immutable audit entry. Reassignments append new
// rows; entries are never updated or deleted.
type TicketAssignment struct {
	ID         string
	TicketID   string
	AssignedTo string
	AssignedBy string
	Reason     string
	CreatedAt  time.Time
}
