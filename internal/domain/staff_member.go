package domain

import "time"

// DepartmentSupport is the department staff must belong to for ticket
// assignment eligibility.
const DepartmentSupport = "support"

// StaffMember models a support agent. The record is owned by the wider user
// directory; this service reads it and verifies credentials for API access.
// Current load is derived from open ticket counts, never stored.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
