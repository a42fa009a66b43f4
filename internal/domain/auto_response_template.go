package domain

import (
	"strings"
	"time"
)

// Template placeholders replaced verbatim during personalization.
const (
	PlaceholderCustomerName = "{{customer_name}}"
	PlaceholderTicketNumber = "{{ticket_number}}"
)

// AutoResponseTemplate is a canned reply matched by keyword tag. At most one
// enabled template should match a keyword; Priority breaks ties when several
// do. UsageCount only ever increments.
type AutoResponseTemplate struct {
	ID          string
	Keyword     string
	Body        string
	Category    *string
	Enabled     bool
	Priority    int
	UsageCount  int64
	SuccessRate float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Personalize substitutes the customer-name and ticket-number placeholders.
func (t *AutoResponseTemplate) Personalize(customerName, ticketNumber string) string {
	body := strings.ReplaceAll(t.Body, PlaceholderCustomerName, customerName)
	return strings.ReplaceAll(body, PlaceholderTicketNumber, ticketNumber)
}
