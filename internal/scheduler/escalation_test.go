package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/config"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/observability"
	"github.com/scamguard/support-service/internal/repository"
)

var testEscalationConfig = config.EscalationConfig{
	SweepIntervalMinutes: 60,
	AdminThresholdHours:  24,
	SuperThresholdHours:  72,
}

func newSweepService(tickets *mocks.TicketRepository, dispatcher events.Dispatcher, now time.Time) *EscalationService {
	svc := NewEscalationService(tickets, dispatcher, zap.NewNop(), observability.NewMetrics(), testEscalationConfig)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSweepComputesTierCutoffs(t *testing.T) {
	now := time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)
	tickets := new(mocks.TicketRepository)
	tickets.On("EscalateOverdue", mock.Anything, repository.EscalationLevelAdmin, now.Add(-24*time.Hour), domain.EscalationReasonAdmin).
		Return([]repository.EscalatedTicket{{ID: "t-1", TicketNumber: "TKT-20251029-0001"}}, nil)
	tickets.On("EscalateOverdue", mock.Anything, repository.EscalationLevelSuperAdmin, now.Add(-72*time.Hour), domain.EscalationReasonSuperAdmin).
		Return(nil, nil)

	svc := newSweepService(tickets, nil, now)
	adminCount, superCount := svc.Sweep(context.Background())

	assert.Equal(t, 1, adminCount)
	assert.Equal(t, 0, superCount)
	tickets.AssertExpectations(t)
}

func TestSweepPublishesEscalationEvents(t *testing.T) {
	now := time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)
	tickets := new(mocks.TicketRepository)
	tickets.On("EscalateOverdue", mock.Anything, repository.EscalationLevelAdmin, mock.Anything, domain.EscalationReasonAdmin).
		Return([]repository.EscalatedTicket{
			{ID: "t-1", TicketNumber: "TKT-20251029-0001", CustomerEmail: "asha@example.com"},
			{ID: "t-2", TicketNumber: "TKT-20251029-0002"},
		}, nil)
	tickets.On("EscalateOverdue", mock.Anything, repository.EscalationLevelSuperAdmin, mock.Anything, domain.EscalationReasonSuperAdmin).
		Return([]repository.EscalatedTicket{
			{ID: "t-3", TicketNumber: "TKT-20251026-0003"},
		}, nil)

	dispatcher := events.NewInMemoryDispatcher()
	var captured []events.Event
	dispatcher.Subscribe(events.EventTicketEscalated, func(ctx context.Context, event events.Event) error {
		captured = append(captured, event)
		return nil
	})

	svc := newSweepService(tickets, dispatcher, now)
	adminCount, superCount := svc.Sweep(context.Background())

	assert.Equal(t, 2, adminCount)
	assert.Equal(t, 1, superCount)
	require.Len(t, captured, 3)

	first, ok := captured[0].Payload.(events.TicketEscalatedPayload)
	require.True(t, ok)
	assert.Equal(t, "admin", first.Level)
	assert.Equal(t, domain.EscalationReasonAdmin, first.Reason)
	assert.Equal(t, "asha@example.com", first.CustomerEmail)

	last, ok := captured[2].Payload.(events.TicketEscalatedPayload)
	require.True(t, ok)
	assert.Equal(t, "super_admin", last.Level)
	assert.Equal(t, domain.EscalationReasonSuperAdmin, last.Reason)
}

func TestSweepStoreFailureIsSoft(t *testing.T) {
	tickets := new(mocks.TicketRepository)
	tickets.On("EscalateOverdue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	svc := newSweepService(tickets, nil, time.Now())
	adminCount, superCount := svc.Sweep(context.Background())

	assert.Zero(t, adminCount)
	assert.Zero(t, superCount)
}

func TestSweepStoreUnavailableIsSoft(t *testing.T) {
	tickets := new(mocks.TicketRepository)
	tickets.On("EscalateOverdue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.ErrUnavailable)

	svc := newSweepService(tickets, nil, time.Now())
	adminCount, superCount := svc.Sweep(context.Background())

	assert.Zero(t, adminCount)
	assert.Zero(t, superCount)
}
