package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/repository"
	"github.com/scamguard/support-service/internal/service"
)

type assignmentFixture struct {
	tickets     *mocks.TicketRepository
	staff       *mocks.StaffRepository
	assignments *mocks.AssignmentRepository
	svc         *service.AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		tickets:     new(mocks.TicketRepository),
		staff:       new(mocks.StaffRepository),
		assignments: new(mocks.AssignmentRepository),
	}
	f.svc = service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     f.tickets,
		StaffRepo:      f.staff,
		AssignmentRepo: f.assignments,
	}, zap.NewNop())
	return f
}

func TestAutoAssignPicksLeastLoadedStaff(t *testing.T) {
	f := newAssignmentFixture()
	staff := &domain.StaffMember{ID: "staff-b", Name: "Bea", Department: domain.DepartmentSupport, Active: true}
	f.staff.On("FindLeastLoaded", mock.Anything).Return(staff, nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.assignments.On("Append", mock.Anything, mock.MatchedBy(func(entry *domain.TicketAssignment) bool {
		return entry.AssignedTo == "staff-b" &&
			entry.AssignedBy == domain.AssignedBySystem &&
			entry.Reason == "Auto-assigned to available support employee"
	})).Return(nil)

	ticket := &domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen}
	assigned, err := f.svc.AutoAssign(context.Background(), ticket)

	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, "staff-b", assigned.ID)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "staff-b", *ticket.AssignedTo)
	f.assignments.AssertExpectations(t)
}

func TestAutoAssignNoStaffAvailable(t *testing.T) {
	f := newAssignmentFixture()
	f.staff.On("FindLeastLoaded", mock.Anything).Return(nil, nil)

	ticket := &domain.Ticket{ID: "t-2", Status: domain.TicketStatusOpen}
	assigned, err := f.svc.AutoAssign(context.Background(), ticket)

	require.NoError(t, err)
	assert.Nil(t, assigned)
	assert.Nil(t, ticket.AssignedTo)
	f.tickets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAutoAssignStoreUnavailableLeavesUnassigned(t *testing.T) {
	f := newAssignmentFixture()
	f.staff.On("FindLeastLoaded", mock.Anything).Return(nil, repository.ErrUnavailable)

	ticket := &domain.Ticket{ID: "t-3", Status: domain.TicketStatusOpen}
	assigned, err := f.svc.AutoAssign(context.Background(), ticket)

	require.NoError(t, err)
	assert.Nil(t, assigned)
}

func TestAssignAuditFailureDoesNotFailAssignment(t *testing.T) {
	f := newAssignmentFixture()
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.assignments.On("Append", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	ticket := &domain.Ticket{ID: "t-4", Status: domain.TicketStatusOpen}
	err := f.svc.Assign(context.Background(), ticket, "staff-a", "staff-z", "manual reassignment")

	require.NoError(t, err)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "staff-a", *ticket.AssignedTo)
}
