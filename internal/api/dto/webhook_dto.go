package dto

// EmailWebhookRequest is the inbound-email provider payload.
type EmailWebhookRequest struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Text        string   `json:"text"`
	HTML        string   `json:"html"`
	Attachments []string `json:"attachments"`
}

// WhatsAppWebhookRequest is the inbound-WhatsApp provider payload. Field
// names follow the provider convention of capitalized form keys.
type WhatsAppWebhookRequest struct {
	From        string `json:"From"`
	Body        string `json:"Body"`
	MediaURL    string `json:"MediaUrl0"`
	ProfileName string `json:"ProfileName"`
}

// InboundAcceptedResponse acknowledges a routed webhook.
type InboundAcceptedResponse struct {
	TicketID      string `json:"ticket_id"`
	TicketNumber  string `json:"ticket_number"`
	CreatedTicket bool   `json:"created_ticket"`
	AutoResponded bool   `json:"auto_responded"`
}
