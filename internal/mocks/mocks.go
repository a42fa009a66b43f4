// Package mocks provides hand-written testify mocks for the repository and
// service interfaces used across the test suites.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/repository"
	"github.com/scamguard/support-service/internal/service"
)

// TicketRepository mocks repository.TicketRepository.
type TicketRepository struct {
	mock.Mock
}

func (m *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) FindLatestOpenByPhone(ctx context.Context, phone string) (*domain.Ticket, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *TicketRepository) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *TicketRepository) EscalateOverdue(ctx context.Context, level repository.EscalationLevel, cutoff time.Time, reason string) ([]repository.EscalatedTicket, error) {
	args := m.Called(ctx, level, cutoff, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.EscalatedTicket), args.Error(1)
}

// ResponseRepository mocks repository.ResponseRepository.
type ResponseRepository struct {
	mock.Mock
}

func (m *ResponseRepository) Create(ctx context.Context, response *domain.TicketResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *ResponseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketResponse), args.Error(1)
}

// TemplateRepository mocks repository.TemplateRepository.
type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) Create(ctx context.Context, template *domain.AutoResponseTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *TemplateRepository) Update(ctx context.Context, template *domain.AutoResponseTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.AutoResponseTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutoResponseTemplate), args.Error(1)
}

func (m *TemplateRepository) List(ctx context.Context, enabledOnly bool) ([]domain.AutoResponseTemplate, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AutoResponseTemplate), args.Error(1)
}

func (m *TemplateRepository) FindEnabledByKeywords(ctx context.Context, tags []string) (*domain.AutoResponseTemplate, error) {
	args := m.Called(ctx, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutoResponseTemplate), args.Error(1)
}

func (m *TemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// AssignmentRepository mocks repository.AssignmentRepository.
type AssignmentRepository struct {
	mock.Mock
}

func (m *AssignmentRepository) Append(ctx context.Context, assignment *domain.TicketAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *AssignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketAssignment), args.Error(1)
}

// StaffRepository mocks repository.StaffRepository.
type StaffRepository struct {
	mock.Mock
}

func (m *StaffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffMember), args.Error(1)
}

func (m *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffMember), args.Error(1)
}

func (m *StaffRepository) FindLeastLoaded(ctx context.Context) (*domain.StaffMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffMember), args.Error(1)
}

// Gateway mocks notify.Gateway.
type Gateway struct {
	mock.Mock
}

func (m *Gateway) Send(ctx context.Context, recipient, subject, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

// TicketAPI mocks service.TicketAPI.
type TicketAPI struct {
	mock.Mock
}

func (m *TicketAPI) CreateTicket(ctx context.Context, input service.CreateTicketInput) (*service.CreateTicketResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateTicketResult), args.Error(1)
}

func (m *TicketAPI) AddResponse(ctx context.Context, ticketID string, senderType domain.ResponseSender, message string, opts service.AddResponseOptions) (*domain.TicketResponse, error) {
	args := m.Called(ctx, ticketID, senderType, message, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketResponse), args.Error(1)
}

// Sequencer mocks service.Sequencer.
type Sequencer struct {
	mock.Mock
}

func (m *Sequencer) NextTicketSequence(ctx context.Context, dateKey string) (int64, error) {
	args := m.Called(ctx, dateKey)
	return args.Get(0).(int64), args.Error(1)
}
