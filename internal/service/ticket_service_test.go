package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/observability"
	"github.com/scamguard/support-service/internal/repository"
	"github.com/scamguard/support-service/internal/service"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

type ticketFixture struct {
	tickets     *mocks.TicketRepository
	responses   *mocks.ResponseRepository
	templates   *mocks.TemplateRepository
	staff       *mocks.StaffRepository
	assignments *mocks.AssignmentRepository
	sequencer   *mocks.Sequencer
	gateway     *mocks.Gateway
	svc         *service.TicketService
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		tickets:     new(mocks.TicketRepository),
		responses:   new(mocks.ResponseRepository),
		templates:   new(mocks.TemplateRepository),
		staff:       new(mocks.StaffRepository),
		assignments: new(mocks.AssignmentRepository),
		sequencer:   new(mocks.Sequencer),
		gateway:     new(mocks.Gateway),
	}
	logger := zap.NewNop()
	f.svc = service.NewTicketService(service.TicketDependencies{
		TicketRepo:    f.tickets,
		ResponseRepo:  f.responses,
		AutoResponder: service.NewAutoResponder(f.templates, logger),
		Assigner: service.NewAssignmentService(service.AssignmentDependencies{
			TicketRepo:     f.tickets,
			StaffRepo:      f.staff,
			AssignmentRepo: f.assignments,
		}, logger),
		Numbers: service.NewTicketNumberGenerator(f.sequencer, f.tickets, logger),
		Gateway: f.gateway,
		Metrics: observability.NewMetrics(),
	}, logger)
	return f
}

func TestCreateTicketAutoRespondPath(t *testing.T) {
	f := newTicketFixture()
	var created *domain.Ticket
	f.sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.tickets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ticket)
		created.ID = "t-1"
	}).Return(nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.templates.On("FindEnabledByKeywords", mock.Anything, []string{"refund"}).Return(&domain.AutoResponseTemplate{
		ID:      "tpl-1",
		Keyword: "refund",
		Body:    "Hi {{customer_name}}, your ticket {{ticket_number}} is on its way to the billing team.",
		Enabled: true,
	}, nil)
	f.templates.On("IncrementUsage", mock.Anything, "tpl-1").Return(nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Send", mock.Anything, "asha@example.com", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		CustomerEmail: "asha@example.com",
		CustomerName:  "Asha",
		Subject:       "Refund",
		Message:       "I would like a refund please",
		Source:        domain.TicketSourceEmail,
	})

	require.NoError(t, err)
	assert.True(t, result.AutoResponded)
	require.NotNil(t, created)
	assert.Equal(t, domain.TicketStatusAutoResponded, created.Status)
	assert.True(t, created.AutoResponseUsed)
	require.NotNil(t, created.AutoResponseTemplateID)
	assert.Equal(t, "tpl-1", *created.AutoResponseTemplateID)
	assert.NotNil(t, created.FirstResponseAt)
	f.staff.AssertNotCalled(t, "FindLeastLoaded", mock.Anything)
}

func TestCreateTicketAssignmentPath(t *testing.T) {
	f := newTicketFixture()
	var created *domain.Ticket
	f.sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(7), nil)
	f.tickets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ticket)
		created.ID = "t-2"
	}).Return(nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.staff.On("FindLeastLoaded", mock.Anything).Return(&domain.StaffMember{ID: "staff-b", Active: true}, nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.assignments.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		CustomerEmail: "bo@example.com",
		Subject:       "Something odd",
		Message:       "My widget died yesterday",
		Source:        domain.TicketSourceDashboard,
	})

	require.NoError(t, err)
	assert.False(t, result.AutoResponded)
	require.NotNil(t, result.AssignedTo)
	assert.Equal(t, "staff-b", *result.AssignedTo)
	f.gateway.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTicketNumberFormat(t *testing.T) {
	f := newTicketFixture()
	var created *domain.Ticket
	f.sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(12), nil)
	f.tickets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Ticket)
		created.ID = "t-3"
	}).Return(nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.staff.On("FindLeastLoaded", mock.Anything).Return(nil, nil)

	result, err := f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		CustomerEmail: "bo@example.com",
		Subject:       "Widget",
		Message:       "My widget died yesterday",
		Source:        domain.TicketSourceDashboard,
	})

	require.NoError(t, err)
	assert.Regexp(t, ticketNumberFormat, result.TicketNumber)
	assert.Contains(t, result.TicketNumber, time.Now().UTC().Format("20060102"))
	assert.Nil(t, result.AssignedTo)
}

func TestCreateTicketStoreUnavailableAborts(t *testing.T) {
	f := newTicketFixture()
	f.sequencer.On("NextTicketSequence", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.tickets.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUnavailable)

	_, err := f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		CustomerEmail: "bo@example.com",
		Subject:       "Widget",
		Message:       "My widget died yesterday",
	})

	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
	f.responses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture()

	_, err := f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		CustomerEmail: "bo@example.com",
		Message:       "hello",
	})
	require.Error(t, err)

	_, err = f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		Subject: "No phone",
		Message: "hello",
		Source:  domain.TicketSourceWhatsApp,
	})
	require.Error(t, err)

	_, err = f.svc.CreateTicket(context.Background(), service.CreateTicketInput{
		Subject: "No email",
		Message: "hello",
		Source:  domain.TicketSourceDashboard,
	})
	require.Error(t, err)
}

func TestAddResponseEmployeeMarksInProgress(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{
		ID:           "t-5",
		TicketNumber: "TKT-20250101-0005",
		Status:       domain.TicketStatusOpen,
		Source:       domain.TicketSourceDashboard,
	}
	f.tickets.On("GetByID", mock.Anything, "t-5").Return(ticket, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.AddResponse(context.Background(), "t-5", domain.SenderEmployee, "Looking into it", service.AddResponseOptions{
		SenderID: "staff-a",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.FirstResponseAt)

	first := *ticket.FirstResponseAt
	_, err = f.svc.AddResponse(context.Background(), "t-5", domain.SenderEmployee, "Still on it", service.AddResponseOptions{
		SenderID: "staff-a",
	})
	require.NoError(t, err)
	assert.Equal(t, first, *ticket.FirstResponseAt, "first response timestamp is set once")
}

func TestAddResponseInternalNoteKeepsStatus(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{
		ID:     "t-6",
		Status: domain.TicketStatusOpen,
		Source: domain.TicketSourceDashboard,
	}
	f.tickets.On("GetByID", mock.Anything, "t-6").Return(ticket, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.AddResponse(context.Background(), "t-6", domain.SenderEmployee, "note to self", service.AddResponseOptions{
		SenderID:     "staff-a",
		InternalNote: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.FirstResponseAt)
}

func TestAddResponseCustomerReopensResolvedTicket(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{
		ID:     "t-7",
		Status: domain.TicketStatusResolved,
		Source: domain.TicketSourceEmail,
	}
	f.tickets.On("GetByID", mock.Anything, "t-7").Return(ticket, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.AddResponse(context.Background(), "t-7", domain.SenderCustomer, "It broke again", service.AddResponseOptions{
		SenderEmail: "asha@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
}

func TestAddResponseEmployeeReplySendsEmail(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{
		ID:            "t-8",
		TicketNumber:  "TKT-20250101-0008",
		CustomerEmail: "asha@example.com",
		Subject:       "Refund",
		Status:        domain.TicketStatusOpen,
		Source:        domain.TicketSourceEmail,
	}
	f.tickets.On("GetByID", mock.Anything, "t-8").Return(ticket, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("Send", mock.Anything, "asha@example.com", "Re: Refund [TKT-20250101-0008]", "On it").Return(nil)

	_, err := f.svc.AddResponse(context.Background(), "t-8", domain.SenderEmployee, "On it", service.AddResponseOptions{
		SenderID: "staff-a",
	})
	require.NoError(t, err)
	f.gateway.AssertExpectations(t)
}

func TestResolveAndCloseTransitions(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{ID: "t-9", Status: domain.TicketStatusInProgress}
	f.tickets.On("GetByID", mock.Anything, "t-9").Return(ticket, nil)
	f.tickets.On("Update", mock.Anything, mock.Anything).Return(nil)

	resolved, err := f.svc.ResolveTicket(context.Background(), "t-9", "staff-a")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	closed, err := f.svc.CloseTicket(context.Background(), "t-9", "staff-a")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
}

func TestCloseOpenTicketRejected(t *testing.T) {
	f := newTicketFixture()
	ticket := &domain.Ticket{ID: "t-10", Status: domain.TicketStatusOpen}
	f.tickets.On("GetByID", mock.Anything, "t-10").Return(ticket, nil)

	_, err := f.svc.CloseTicket(context.Background(), "t-10", "staff-a")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestGetTicketNotFound(t *testing.T) {
	f := newTicketFixture()
	f.tickets.On("GetByID", mock.Anything, "missing").Return(nil, pgx.ErrNoRows)

	_, _, err := f.svc.GetTicket(context.Background(), "missing")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestListTicketsStoreUnavailableReturnsEmpty(t *testing.T) {
	f := newTicketFixture()
	f.tickets.On("ListWithFilter", mock.Anything, mock.Anything).Return(nil, repository.ErrUnavailable)

	tickets, err := f.svc.ListTickets(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
