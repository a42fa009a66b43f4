package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/repository"
)

// whatsappPrefix is stripped from provider phone numbers.
const whatsappPrefix = "whatsapp:"

var (
	// ticketNumberPattern detects reply-threading in email subjects.
	ticketNumberPattern = regexp.MustCompile(`TKT-\d{8}-\d{4}`)
	// senderPattern splits "Display Name <address@host>" senders.
	senderPattern = regexp.MustCompile(`^\s*"?([^"<]*?)"?\s*<([^>]+)>\s*$`)
)

// TicketAPI is the slice of the ticket service the inbound router needs.
type TicketAPI interface {
	CreateTicket(ctx context.Context, input CreateTicketInput) (*CreateTicketResult, error)
	AddResponse(ctx context.Context, ticketID string, senderType domain.ResponseSender, message string, opts AddResponseOptions) (*domain.TicketResponse, error)
}

// InboundResult reports how an inbound message was routed.
type InboundResult struct {
	TicketID      string
	TicketNumber  string
	CreatedTicket bool
	AutoResponded bool
	AssignedTo    *string
}

// InboundService routes webhook payloads to ticket creation or response
// threading.
type InboundService struct {
	tickets repository.TicketRepository
	api     TicketAPI
	logger  *zap.Logger
}

// NewInboundService constructs the router.
func NewInboundService(tickets repository.TicketRepository, api TicketAPI, logger *zap.Logger) *InboundService {
	return &InboundService{tickets: tickets, api: api, logger: logger}
}

// HandleEmail processes an inbound-email webhook. A ticket number in the
// subject threads the message onto the existing ticket; otherwise a new
// ticket is created.
func (s *InboundService) HandleEmail(ctx context.Context, in domain.EmailInbound) (*InboundResult, error) {
	name, address := parseSender(in.From)
	body := strings.TrimSpace(in.Text)
	if body == "" {
		body = strings.TrimSpace(in.HTML)
	}
	if body == "" {
		body = "(empty message)"
	}

	if number := ticketNumberPattern.FindString(in.Subject); number != "" {
		ticket, err := s.tickets.GetByNumber(ctx, number)
		switch {
		case err == nil:
			resp, err := s.api.AddResponse(ctx, ticket.ID, domain.SenderCustomer, body, AddResponseOptions{
				SenderEmail: address,
				Channel:     domain.TicketSourceEmail,
				Attachments: attachmentInputs(in.Attachments),
			})
			if err != nil {
				return nil, err
			}
			s.logger.Info("threaded inbound email onto existing ticket",
				zap.String("ticket_number", number), zap.String("response_id", resp.ID))
			return &InboundResult{TicketID: ticket.ID, TicketNumber: number}, nil
		case errors.Is(err, pgx.ErrNoRows):
			// stale reference; fall through to a fresh ticket
			s.logger.Info("subject references unknown ticket; creating new one",
				zap.String("ticket_number", number))
		case errors.Is(err, repository.ErrUnavailable):
			// createTicket below reports the outage
		default:
			s.logger.Warn("ticket lookup by number failed", zap.Error(err))
		}
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = "Email support request"
	}
	created, err := s.api.CreateTicket(ctx, CreateTicketInput{
		CustomerEmail: address,
		CustomerName:  name,
		Subject:       subject,
		Message:       body,
		Source:        domain.TicketSourceEmail,
		Attachments:   attachmentInputs(in.Attachments),
	})
	if err != nil {
		return nil, err
	}
	return &InboundResult{
		TicketID:      created.TicketID,
		TicketNumber:  created.TicketNumber,
		CreatedTicket: true,
		AutoResponded: created.AutoResponded,
		AssignedTo:    created.AssignedTo,
	}, nil
}

// HandleWhatsApp processes an inbound-WhatsApp webhook. Messages thread onto
// the sender's most recent non-closed ticket; with none, a new ticket is
// created.
func (s *InboundService) HandleWhatsApp(ctx context.Context, in domain.WhatsAppInbound) (*InboundResult, error) {
	phone := strings.TrimPrefix(strings.TrimSpace(in.From), whatsappPrefix)
	body := strings.TrimSpace(in.Body)
	if body == "" {
		body = "(media message)"
	}

	var attachments []AttachmentInput
	if in.MediaURL != "" {
		attachments = []AttachmentInput{{URL: in.MediaURL}}
	}

	ticket, err := s.tickets.FindLatestOpenByPhone(ctx, phone)
	switch {
	case err == nil:
		resp, err := s.api.AddResponse(ctx, ticket.ID, domain.SenderCustomer, body, AddResponseOptions{
			SenderPhone: phone,
			Channel:     domain.TicketSourceWhatsApp,
			Attachments: attachments,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("threaded whatsapp message onto existing ticket",
			zap.String("ticket_number", ticket.TicketNumber), zap.String("response_id", resp.ID))
		return &InboundResult{TicketID: ticket.ID, TicketNumber: ticket.TicketNumber}, nil
	case errors.Is(err, pgx.ErrNoRows):
		// no open conversation for this number; open one
	case errors.Is(err, repository.ErrUnavailable):
		// createTicket below reports the outage
	default:
		s.logger.Warn("whatsapp ticket lookup failed", zap.Error(err))
	}

	created, err := s.api.CreateTicket(ctx, CreateTicketInput{
		CustomerName:  in.ProfileName,
		CustomerPhone: phone,
		Subject:       whatsappSubject(body),
		Message:       body,
		Source:        domain.TicketSourceWhatsApp,
		Attachments:   attachments,
	})
	if err != nil {
		return nil, err
	}
	return &InboundResult{
		TicketID:      created.TicketID,
		TicketNumber:  created.TicketNumber,
		CreatedTicket: true,
		AutoResponded: created.AutoResponded,
		AssignedTo:    created.AssignedTo,
	}, nil
}

// HandleDashboard processes a direct dashboard submission.
func (s *InboundService) HandleDashboard(ctx context.Context, in domain.DashboardInbound) (*InboundResult, error) {
	created, err := s.api.CreateTicket(ctx, CreateTicketInput{
		CustomerEmail: in.Email,
		CustomerName:  in.Name,
		CustomerPhone: in.Phone,
		Subject:       in.Subject,
		Message:       in.Message,
		Source:        domain.TicketSourceDashboard,
		UserID:        in.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &InboundResult{
		TicketID:      created.TicketID,
		TicketNumber:  created.TicketNumber,
		CreatedTicket: true,
		AutoResponded: created.AutoResponded,
		AssignedTo:    created.AssignedTo,
	}, nil
}

// parseSender extracts display name and address from an email From header.
// Malformed values fall back to the raw string as address.
func parseSender(from string) (name, address string) {
	if m := senderPattern.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", strings.TrimSpace(from)
}

func whatsappSubject(body string) string {
	const maxLen = 60
	if body == "" || body == "(media message)" {
		return "WhatsApp support request"
	}
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen-3] + "..."
}

func attachmentInputs(urls []string) []AttachmentInput {
	if len(urls) == 0 {
		return nil
	}
	inputs := make([]AttachmentInput, 0, len(urls))
	for _, url := range urls {
		inputs = append(inputs, AttachmentInput{URL: url})
	}
	return inputs
}
