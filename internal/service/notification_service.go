package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/config"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/notify"
)

// NotificationService observes domain events and forwards the ones that need
// human attention. Customer-facing sends live in the ticket service; this
// service covers the internal side.
type NotificationService struct {
	dispatcher events.Dispatcher
	gateway    notify.Gateway
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, gateway notify.Gateway, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		gateway:    gateway,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAutoResponded, n.handleTicketAutoResponded)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketResponseAdded, n.handleTicketResponseAdded)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated",
		zap.String("ticket_id", event.TicketID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketAutoResponded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAutoResponded",
		zap.String("ticket_id", event.TicketID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketResponseAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketResponseAdded",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}

// handleTicketEscalated alerts the admin inbox. Escalations are the one event
// class where silence costs customers, so they are logged at warn level.
func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	n.logger.Warn("TicketEscalated",
		zap.String("ticket_id", event.TicketID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Any("payload", event.Payload))

	if strings.TrimSpace(n.cfg.AdminEmail) == "" || n.gateway == nil {
		return nil
	}

	payload, _ := event.Payload.(events.TicketEscalatedPayload)
	subject := fmt.Sprintf("Ticket %s escalated", event.TicketNumber)
	body := fmt.Sprintf("Ticket %s requires attention.\n\nLevel: %s\nReason: %s\n",
		event.TicketNumber, payload.Level, payload.Reason)
	if err := n.gateway.Send(ctx, n.cfg.AdminEmail, subject, body); err != nil {
		n.logger.Warn("failed to send escalation alert",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	return nil
}
