package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/repository"
)

// autoAssignReason is recorded in the audit log for balancer assignments.
const autoAssignReason = "Auto-assigned to available support employee"

// AssignmentService routes tickets to the least-loaded support staff member
// and maintains the append-only assignment audit log.
type AssignmentService struct {
	tickets     repository.TicketRepository
	staff       repository.StaffRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// AssignmentDependencies bundles repositories for the service.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	StaffRepo      repository.StaffRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		staff:       deps.StaffRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// FindAvailableStaff returns the active support staff member with the fewest
// open tickets, or nil when no support staff exist. A greedy heuristic, not
// a fairness guarantee.
func (s *AssignmentService) FindAvailableStaff(ctx context.Context) (*domain.StaffMember, error) {
	staff, err := s.staff.FindLeastLoaded(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, nil
		}
		return nil, err
	}
	return staff, nil
}

// AutoAssign picks an available staff member for the ticket, updates the
// ticket and appends the audit row. Returns nil with no error when nobody is
// available; the ticket stays unassigned.
func (s *AssignmentService) AutoAssign(ctx context.Context, ticket *domain.Ticket) (*domain.StaffMember, error) {
	staff, err := s.FindAvailableStaff(ctx)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		s.logger.Info("no support staff available; leaving ticket unassigned",
			zap.String("ticket_id", ticket.ID))
		return nil, nil
	}
	if err := s.Assign(ctx, ticket, staff.ID, domain.AssignedBySystem, autoAssignReason); err != nil {
		return nil, err
	}
	return staff, nil
}

// Assign sets the ticket assignee and records the change in the audit log.
func (s *AssignmentService) Assign(ctx context.Context, ticket *domain.Ticket, staffID, assignedBy, reason string) error {
	ticket.AssignedTo = &staffID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	entry := &domain.TicketAssignment{
		TicketID:   ticket.ID,
		AssignedTo: staffID,
		AssignedBy: assignedBy,
		Reason:     reason,
	}
	if err := s.assignments.Append(ctx, entry); err != nil {
		// assignment itself succeeded; a missing audit row is logged, not
		// surfaced
		s.logger.Warn("failed to append assignment audit entry",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventTicketAssigned,
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Timestamp:    time.Now(),
		Payload: events.TicketAssignedPayload{
			AssignedTo: staffID,
			AssignedBy: assignedBy,
			Reason:     reason,
		},
	})
	return nil
}

func (s *AssignmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
