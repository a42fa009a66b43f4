package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scamguard/support-service/internal/api/dto"
	"github.com/scamguard/support-service/internal/auth"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/repository"
	"github.com/scamguard/support-service/internal/service"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	inbound     *service.InboundService
	assignments repository.AssignmentRepository
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, inbound *service.InboundService, assignments repository.AssignmentRepository) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, inbound: inbound, assignments: assignments}
}

// CreateTicket POST /tickets. Dashboard submissions; no authentication since
// customers have none.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.inbound.HandleDashboard(c.UserContext(), domain.DashboardInbound{
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketCreatedResponse{
		TicketID:      result.TicketID,
		TicketNumber:  result.TicketNumber,
		AutoResponded: result.AutoResponded,
		AssignedTo:    result.AssignedTo,
	}})
}

// ListTickets GET /tickets. Staff only.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id. Staff only.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	ticket, thread, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, thread)})
}

// AddResponse POST /tickets/:id/responses. Staff only; customer responses
// arrive through the webhooks.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AddResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}

	attachments := make([]service.AttachmentInput, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, service.AttachmentInput{
			URL:      att.URL,
			FileName: att.FileName,
			MimeType: att.MimeType,
		})
	}
	response, err := h.tickets.AddResponse(c.UserContext(), c.Params("id"), domain.SenderEmployee, req.Message, service.AddResponseOptions{
		SenderID:     principal.Staff.ID,
		SenderEmail:  principal.Staff.Email,
		InternalNote: req.InternalNote,
		Attachments:  attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponseResponse(response)})
}

// ListAssignments GET /tickets/:id/assignments. Returns the append-only
// assignment audit trail, oldest first.
func (h *TicketsHandler) ListAssignments(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	entries, err := h.assignments.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.AssignmentResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AssignmentResponse{
			ID:         entry.ID,
			AssignedTo: entry.AssignedTo,
			AssignedBy: entry.AssignedBy,
			Reason:     entry.Reason,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResolveTicket POST /tickets/:id/resolve. Staff only.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), c.Params("id"), principal.Staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CloseTicket POST /tickets/:id/close. Staff only.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	ticket, err := h.tickets.CloseTicket(c.UserContext(), c.Params("id"), principal.Staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if sourceStr := c.Query("source"); sourceStr != "" {
		source := domain.TicketSource(sourceStr)
		filter.Source = &source
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if escalatedStr := c.Query("escalated"); escalatedStr != "" {
		escalated := escalatedStr == "true" || escalatedStr == "1"
		filter.Escalated = &escalated
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:               ticket.ID,
		TicketNumber:     ticket.TicketNumber,
		CustomerEmail:    ticket.CustomerEmail,
		CustomerName:     ticket.CustomerName,
		Subject:          ticket.Subject,
		Source:           ticket.Source,
		Status:           ticket.Status,
		Priority:         ticket.Priority,
		AssignedTo:       ticket.AssignedTo,
		EscalatedToAdmin: ticket.EscalatedToAdmin,
		EscalatedToSuper: ticket.EscalatedToSuperAdmin,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, thread []domain.TicketResponse) dto.TicketDetailResponse {
	responses := make([]dto.TicketResponseResponse, 0, len(thread))
	for i := range thread {
		responses = append(responses, ticketResponseResponse(&thread[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary:    ticketSummary(ticket),
		CustomerPhone:    ticket.CustomerPhone,
		Body:             ticket.Body,
		Category:         ticket.Category,
		EscalationReason: ticket.EscalationReason,
		FirstResponseAt:  ticket.FirstResponseAt,
		ResolvedAt:       ticket.ResolvedAt,
		Responses:        responses,
	}
}

func ticketResponseResponse(resp *domain.TicketResponse) dto.TicketResponseResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(resp.Attachments))
	for _, att := range resp.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:       att.ID,
			URL:      att.URL,
			FileName: att.FileName,
			MimeType: att.MimeType,
		})
	}
	return dto.TicketResponseResponse{
		ID:           resp.ID,
		SenderType:   resp.SenderType,
		SenderID:     resp.SenderID,
		SenderEmail:  resp.SenderEmail,
		Message:      resp.Message,
		InternalNote: resp.InternalNote,
		Channel:      resp.Channel,
		Attachments:  attachments,
		CreatedAt:    resp.CreatedAt,
	}
}
