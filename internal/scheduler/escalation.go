package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/config"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/observability"
	"github.com/scamguard/support-service/internal/repository"
)

// TicketEscalator is the slice of the ticket repository the sweep needs.
type TicketEscalator interface {
	EscalateOverdue(ctx context.Context, level repository.EscalationLevel, cutoff time.Time, reason string) ([]repository.EscalatedTicket, error)
}

// EscalationService promotes stale unresolved tickets through escalation
// tiers on a fixed interval. It only ever sets escalation flags and reason;
// all other ticket fields belong to the ticket service.
type EscalationService struct {
	tickets    TicketEscalator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.EscalationConfig
	cron       *cron.Cron
	now        func() time.Time
}

// NewEscalationService wires the sweep with its dependencies.
func NewEscalationService(tickets TicketEscalator, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.EscalationConfig) *EscalationService {
	return &EscalationService{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start runs one sweep immediately and schedules recurring sweeps. The
// returned stop handle must be called on shutdown.
func (s *EscalationService) Start(ctx context.Context) error {
	s.Sweep(ctx)

	spec := fmt.Sprintf("@every %s", s.cfg.SweepInterval())
	if _, err := s.cron.AddFunc(spec, func() {
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule escalation sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("escalation scheduler started",
		zap.Duration("interval", s.cfg.SweepInterval()))
	return nil
}

// Stop halts the recurring sweep and waits for a running one to finish.
func (s *EscalationService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("escalation scheduler stopped")
}

// Sweep promotes overdue tickets through both tiers. Store failures are
// logged and swallowed so the next scheduled tick always fires. Returns the
// number of tickets promoted per tier.
func (s *EscalationService) Sweep(ctx context.Context) (adminCount, superCount int) {
	start := s.now()

	adminCount = s.escalate(ctx,
		repository.EscalationLevelAdmin,
		start.Add(-s.cfg.AdminThreshold()),
		domain.EscalationReasonAdmin)

	superCount = s.escalate(ctx,
		repository.EscalationLevelSuperAdmin,
		start.Add(-s.cfg.SuperThreshold()),
		domain.EscalationReasonSuperAdmin)

	s.metrics.RecordSweep(time.Since(start))
	if adminCount > 0 || superCount > 0 {
		s.logger.Info("escalation sweep promoted tickets",
			zap.Int("admin", adminCount),
			zap.Int("super_admin", superCount))
	}
	return adminCount, superCount
}

func (s *EscalationService) escalate(ctx context.Context, level repository.EscalationLevel, cutoff time.Time, reason string) int {
	escalated, err := s.tickets.EscalateOverdue(ctx, level, cutoff, reason)
	if err != nil {
		s.logger.Warn("escalation sweep failed",
			zap.String("level", string(level)), zap.Error(err))
		return 0
	}

	for _, ticket := range escalated {
		s.publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventTicketEscalated,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			Timestamp:    s.now(),
			Payload: events.TicketEscalatedPayload{
				Level:         string(level),
				Reason:        reason,
				CustomerEmail: ticket.CustomerEmail,
			},
		})
	}
	return len(escalated)
}

func (s *EscalationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
