package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scamguard/support-service/internal/api/dto"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/service"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

// WebhooksHandler receives inbound-channel callbacks from providers.
type WebhooksHandler struct {
	inbound *service.InboundService
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(inbound *service.InboundService) *WebhooksHandler {
	return &WebhooksHandler{inbound: inbound}
}

// Email POST /webhooks/email.
func (h *WebhooksHandler) Email(c *fiber.Ctx) error {
	var req dto.EmailWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.From) == "" {
		return apperrors.NewValidationError("from required", nil)
	}

	result, err := h.inbound.HandleEmail(c.UserContext(), domain.EmailInbound{
		From:        req.From,
		To:          req.To,
		Subject:     req.Subject,
		Text:        req.Text,
		HTML:        req.HTML,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": inboundAccepted(result)})
}

// WhatsApp POST /webhooks/whatsapp.
func (h *WebhooksHandler) WhatsApp(c *fiber.Ctx) error {
	var req dto.WhatsAppWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.From) == "" {
		return apperrors.NewValidationError("From required", nil)
	}

	result, err := h.inbound.HandleWhatsApp(c.UserContext(), domain.WhatsAppInbound{
		From:        req.From,
		Body:        req.Body,
		MediaURL:    req.MediaURL,
		ProfileName: req.ProfileName,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": inboundAccepted(result)})
}

func inboundAccepted(result *service.InboundResult) dto.InboundAcceptedResponse {
	return dto.InboundAcceptedResponse{
		TicketID:      result.TicketID,
		TicketNumber:  result.TicketNumber,
		CreatedTicket: result.CreatedTicket,
		AutoResponded: result.AutoResponded,
	}
}
