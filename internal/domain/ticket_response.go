package domain

import "time"

// ResponseSender indicates who authored a ticket response.
type ResponseSender string

const (
	SenderCustomer ResponseSender = "customer"
	SenderEmployee ResponseSender = "employee"
	SenderSystem   ResponseSender = "system"
)

// TicketResponse captures one entry in a ticket thread. Responses ordered by
// CreatedAt form the conversation; internal notes are flagged here and
// filtered out of customer-facing rendering by consumers.
type TicketResponse struct {
	ID           string
	TicketID     string
	SenderType   ResponseSender
	SenderID     *string
	SenderEmail  *string
	SenderPhone  *string
	Message      string
	InternalNote bool
	Channel      TicketSource
	Attachments  []AttachmentReference
	CreatedAt    time.Time
}

// AttachmentReference stores metadata for response attachments.
type AttachmentReference struct {
	ID         string
	ResponseID string
	URL        string
	FileName   string
	MimeType   string
	CreatedAt  time.Time
}
