package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/notify"
	"github.com/scamguard/support-service/internal/observability"
	"github.com/scamguard/support-service/internal/repository"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

// TicketService owns the ticket lifecycle: creation, response threading and
// status transitions. It is the only writer of ticket status.
type TicketService struct {
	tickets       repository.TicketRepository
	responses     repository.ResponseRepository
	autoResponder *AutoResponder
	assigner      *AssignmentService
	numbers       *TicketNumberGenerator
	gateway       notify.Gateway
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	ResponseRepo  repository.ResponseRepository
	AutoResponder *AutoResponder
	Assigner      *AssignmentService
	Numbers       *TicketNumberGenerator
	Gateway       notify.Gateway
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies, logger *zap.Logger) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		responses:     deps.ResponseRepo,
		autoResponder: deps.AutoResponder,
		assigner:      deps.Assigner,
		numbers:       deps.Numbers,
		gateway:       deps.Gateway,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		metrics:       deps.Metrics,
	}
}

// AttachmentInput defines attachment metadata on inbound messages.
type AttachmentInput struct {
	URL      string
	FileName string
	MimeType string
}

// CreateTicketInput describes an inbound contact from any channel.
type CreateTicketInput struct {
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Subject       string
	Message       string
	Source        domain.TicketSource
	Category      string
	Attachments   []AttachmentInput
	UserID        string
}

// CreateTicketResult reports the outcome of ticket creation.
type CreateTicketResult struct {
	TicketID      string
	TicketNumber  string
	AutoResponded bool
	AssignedTo    *string
}

// AddResponseOptions carries sender identity and flags for AddResponse.
type AddResponseOptions struct {
	SenderID     string
	SenderEmail  string
	SenderPhone  string
	InternalNote bool
	Channel      domain.TicketSource
	Attachments  []AttachmentInput
}

// CreateTicket persists a new ticket and attempts resolution: auto-response
// first, staff assignment second. The initial insert is the commit point; if
// it fails the whole operation aborts with no side effects. Later steps
// degrade softly to an open, unassigned ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*CreateTicketResult, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	number, err := s.numbers.Generate(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		TicketNumber:  number,
		CustomerEmail: input.CustomerEmail,
		CustomerName:  optionalString(input.CustomerName),
		CustomerPhone: optionalString(input.CustomerPhone),
		Subject:       strings.TrimSpace(input.Subject),
		Body:          strings.TrimSpace(input.Message),
		Source:        input.Source,
		Status:        domain.TicketStatusOpen,
		Priority:      domain.TicketPriorityNormal,
		Category:      optionalString(input.Category),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, apperrors.NewUnavailable("cannot create ticket: store unavailable")
		}
		return nil, apperrors.MapError(err)
	}

	// the inbound message opens the thread; losing it is logged, not fatal
	s.recordInboundMessage(ctx, ticket, input)

	s.publish(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketCreatedPayload{
			CustomerEmail: ticket.CustomerEmail,
			CustomerName:  input.CustomerName,
			Subject:       ticket.Subject,
			Source:        ticket.Source,
		},
	})

	result := &CreateTicketResult{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
	}

	if auto := s.autoResponder.TryAutoRespond(ctx, ticket, input.Message); auto.Matched {
		s.applyAutoResponse(ctx, ticket, auto)
		result.AutoResponded = true
		s.metrics.RecordTicket("auto_responded")
		return result, nil
	}

	staff, err := s.assigner.AutoAssign(ctx, ticket)
	if err != nil {
		s.logger.Warn("staff assignment failed; ticket left unassigned",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	if staff != nil {
		result.AssignedTo = &staff.ID
		s.metrics.RecordTicket("assigned")
	} else {
		s.metrics.RecordTicket("unassigned")
	}

	if ticket.Source == domain.TicketSourceEmail {
		s.sendAcknowledgment(ctx, ticket)
	}
	return result, nil
}

// AddResponse appends a message to a ticket thread and applies the resulting
// status transition. The ticket's updatedAt is always bumped.
func (s *TicketService) AddResponse(ctx context.Context, ticketID string, senderType domain.ResponseSender, message string, opts AddResponseOptions) (*domain.TicketResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	channel := opts.Channel
	if channel == "" {
		channel = ticket.Source
	}

	response := &domain.TicketResponse{
		TicketID:     ticket.ID,
		SenderType:   senderType,
		SenderID:     optionalString(opts.SenderID),
		SenderEmail:  optionalString(opts.SenderEmail),
		SenderPhone:  optionalString(opts.SenderPhone),
		Message:      strings.TrimSpace(message),
		InternalNote: opts.InternalNote,
		Channel:      channel,
		Attachments:  attachmentRefs(opts.Attachments),
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	now := time.Now()
	switch {
	case senderType == domain.SenderEmployee && !opts.InternalNote:
		ticket.Status = domain.TicketStatusInProgress
		if ticket.FirstResponseAt == nil {
			ticket.FirstResponseAt = &now
		}
	case senderType == domain.SenderSystem:
		if ticket.FirstResponseAt == nil {
			ticket.FirstResponseAt = &now
		}
	case senderType == domain.SenderCustomer:
		// a new customer message reopens finished tickets
		if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
			ticket.Status = domain.TicketStatusInProgress
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.logger.Warn("failed to update ticket after response",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	if oldStatus != ticket.Status {
		s.publishStatusChange(ctx, ticket, oldStatus)
	}
	s.publish(ctx, events.Event{
		Type:         events.EventTicketResponseAdded,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketResponseAddedPayload{
			ResponseID:   response.ID,
			SenderType:   senderType,
			InternalNote: opts.InternalNote,
			BodyPreview:  preview(response.Message, 120),
		},
	})

	if senderType == domain.SenderEmployee && !opts.InternalNote && ticket.Source == domain.TicketSourceEmail {
		subject := fmt.Sprintf("Re: %s [%s]", ticket.Subject, ticket.TicketNumber)
		if err := s.gateway.Send(ctx, ticket.CustomerEmail, subject, response.Message); err != nil {
			s.logger.Warn("failed to send response email", zap.Error(err))
		}
	}
	return response, nil
}

// GetTicket returns a ticket with its full response thread.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.TicketResponse, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	thread, err := s.responses.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, thread, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return []domain.Ticket{}, nil
		}
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ResolveTicket marks a ticket resolved by staff.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID, staffID string) (*domain.Ticket, error) {
	return s.transition(ctx, ticketID, staffID, domain.TicketStatusResolved)
}

// CloseTicket closes a resolved ticket.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID, staffID string) (*domain.Ticket, error) {
	return s.transition(ctx, ticketID, staffID, domain.TicketStatusClosed)
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:          {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusAutoResponded: {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusInProgress:    {domain.TicketStatusResolved},
	domain.TicketStatusResolved:      {domain.TicketStatusClosed},
	domain.TicketStatusClosed:        {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s *TicketService) transition(ctx context.Context, ticketID, staffID string, next domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}
	oldStatus := ticket.Status
	ticket.Status = next
	if next == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("staff_id", staffID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(next)))
	s.publishStatusChange(ctx, ticket, oldStatus)
	return ticket, nil
}

func (s *TicketService) applyAutoResponse(ctx context.Context, ticket *domain.Ticket, auto AutoResponseResult) {
	sysResponse := &domain.TicketResponse{
		TicketID:   ticket.ID,
		SenderType: domain.SenderSystem,
		Message:    auto.ResponseText,
		Channel:    ticket.Source,
	}
	if err := s.responses.Create(ctx, sysResponse); err != nil {
		s.logger.Warn("failed to persist auto-response", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	now := time.Now()
	ticket.Status = domain.TicketStatusAutoResponded
	ticket.AutoResponseUsed = true
	ticket.AutoResponseTemplateID = &auto.TemplateID
	if ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.logger.Warn("failed to mark ticket auto-responded", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type:         events.EventTicketAutoResponded,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketAutoRespondedPayload{
			CustomerEmail: ticket.CustomerEmail,
			TemplateID:    auto.TemplateID,
			ResponseText:  auto.ResponseText,
			Source:        ticket.Source,
		},
	})

	if ticket.Source == domain.TicketSourceEmail {
		subject := fmt.Sprintf("Re: %s [%s]", ticket.Subject, ticket.TicketNumber)
		if err := s.gateway.Send(ctx, ticket.CustomerEmail, subject, auto.ResponseText); err != nil {
			s.logger.Warn("failed to send auto-response email", zap.Error(err))
		}
	}
}

func (s *TicketService) sendAcknowledgment(ctx context.Context, ticket *domain.Ticket) {
	subject := fmt.Sprintf("We received your request [%s]", ticket.TicketNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for contacting us. Your ticket %s has been created and our support team will get back to you shortly.\n",
		ticket.DisplayName(), ticket.TicketNumber)
	if err := s.gateway.Send(ctx, ticket.CustomerEmail, subject, body); err != nil {
		s.logger.Warn("failed to send acknowledgment email",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) recordInboundMessage(ctx context.Context, ticket *domain.Ticket, input CreateTicketInput) {
	response := &domain.TicketResponse{
		TicketID:    ticket.ID,
		SenderType:  domain.SenderCustomer,
		SenderEmail: optionalString(input.CustomerEmail),
		SenderPhone: optionalString(input.CustomerPhone),
		Message:     strings.TrimSpace(input.Message),
		Channel:     ticket.Source,
		Attachments: attachmentRefs(input.Attachments),
	}
	if err := s.responses.Create(ctx, response); err != nil {
		s.logger.Warn("failed to record inbound message",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, apperrors.NewUnavailable("store unavailable")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticket *domain.Ticket, oldStatus domain.TicketStatus) {
	s.publish(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateCreateInput(input *CreateTicketInput) error {
	if input.Source == "" {
		input.Source = domain.TicketSourceDashboard
	}
	if strings.TrimSpace(input.Subject) == "" {
		return apperrors.NewValidationError("subject required", nil)
	}
	if strings.TrimSpace(input.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	// WhatsApp contacts carry no email address; the phone number identifies
	// the customer instead
	if input.Source == domain.TicketSourceWhatsApp {
		if strings.TrimSpace(input.CustomerPhone) == "" {
			return apperrors.NewValidationError("customer phone required for whatsapp tickets", nil)
		}
		return nil
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return apperrors.NewValidationError("customer email required", nil)
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func attachmentRefs(inputs []AttachmentInput) []domain.AttachmentReference {
	if len(inputs) == 0 {
		return nil
	}
	refs := make([]domain.AttachmentReference, 0, len(inputs))
	for _, in := range inputs {
		refs = append(refs, domain.AttachmentReference{
			URL:      in.URL,
			FileName: in.FileName,
			MimeType: in.MimeType,
		})
	}
	return refs
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
