package domain

// Inbound webhook payloads are modelled as explicit per-channel variants,
// validated at the HTTP boundary before reaching the ticket service.

// EmailInbound is a parsed inbound-email webhook payload.
type EmailInbound struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []string
}

// WhatsAppInbound is a parsed inbound-WhatsApp webhook payload. From may
// still carry the provider's "whatsapp:" prefix.
type WhatsAppInbound struct {
	From        string
	Body        string
	MediaURL    string
	ProfileName string
}

// DashboardInbound is a direct ticket submission from the dashboard.
type DashboardInbound struct {
	Email   string
	Name    string
	Phone   string
	Subject string
	Message string
	UserID  string
}
