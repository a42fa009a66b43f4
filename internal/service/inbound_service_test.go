package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/service"
)

func newInboundFixture() (*mocks.TicketRepository, *mocks.TicketAPI, *service.InboundService) {
	tickets := new(mocks.TicketRepository)
	api := new(mocks.TicketAPI)
	svc := service.NewInboundService(tickets, api, zap.NewNop())
	return tickets, api, svc
}

func TestHandleEmailThreadsOnTicketNumber(t *testing.T) {
	tickets, api, svc := newInboundFixture()
	existing := &domain.Ticket{ID: "t-42", TicketNumber: "TKT-20251030-0042"}
	tickets.On("GetByNumber", mock.Anything, "TKT-20251030-0042").Return(existing, nil)
	api.On("AddResponse", mock.Anything, "t-42", domain.SenderCustomer, "Still broken", mock.MatchedBy(func(opts service.AddResponseOptions) bool {
		return opts.SenderEmail == "asha@example.com" && opts.Channel == domain.TicketSourceEmail
	})).Return(&domain.TicketResponse{ID: "r-1"}, nil)

	result, err := svc.HandleEmail(context.Background(), domain.EmailInbound{
		From:    "Asha Rao <asha@example.com>",
		Subject: "Re: Help TKT-20251030-0042",
		Text:    "Still broken",
	})

	require.NoError(t, err)
	assert.False(t, result.CreatedTicket)
	assert.Equal(t, "t-42", result.TicketID)
	assert.Equal(t, "TKT-20251030-0042", result.TicketNumber)
	api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestHandleEmailCreatesTicketAndParsesSender(t *testing.T) {
	_, api, svc := newInboundFixture()
	api.On("CreateTicket", mock.Anything, mock.MatchedBy(func(input service.CreateTicketInput) bool {
		return input.CustomerEmail == "asha@example.com" &&
			input.CustomerName == "Asha Rao" &&
			input.Source == domain.TicketSourceEmail &&
			input.Subject == "Help needed"
	})).Return(&service.CreateTicketResult{TicketID: "t-1", TicketNumber: "TKT-20251030-0001"}, nil)

	result, err := svc.HandleEmail(context.Background(), domain.EmailInbound{
		From:    "Asha Rao <asha@example.com>",
		Subject: "Help needed",
		Text:    "My account is locked out",
	})

	require.NoError(t, err)
	assert.True(t, result.CreatedTicket)
	assert.Equal(t, "TKT-20251030-0001", result.TicketNumber)
}

func TestHandleEmailRawAddressSender(t *testing.T) {
	_, api, svc := newInboundFixture()
	api.On("CreateTicket", mock.Anything, mock.MatchedBy(func(input service.CreateTicketInput) bool {
		return input.CustomerEmail == "asha@example.com" && input.CustomerName == ""
	})).Return(&service.CreateTicketResult{TicketID: "t-2", TicketNumber: "TKT-20251030-0002"}, nil)

	_, err := svc.HandleEmail(context.Background(), domain.EmailInbound{
		From:    "asha@example.com",
		Subject: "Help",
		Text:    "hi",
	})
	require.NoError(t, err)
}

func TestHandleEmailStaleTicketNumberCreatesNew(t *testing.T) {
	tickets, api, svc := newInboundFixture()
	tickets.On("GetByNumber", mock.Anything, "TKT-20240101-9999").Return(nil, pgx.ErrNoRows)
	api.On("CreateTicket", mock.Anything, mock.Anything).Return(&service.CreateTicketResult{TicketID: "t-3", TicketNumber: "TKT-20251030-0003"}, nil)

	result, err := svc.HandleEmail(context.Background(), domain.EmailInbound{
		From:    "bo@example.com",
		Subject: "Re: TKT-20240101-9999",
		Text:    "following up",
	})

	require.NoError(t, err)
	assert.True(t, result.CreatedTicket)
}

func TestHandleWhatsAppThreadsOnOpenTicket(t *testing.T) {
	tickets, api, svc := newInboundFixture()
	existing := &domain.Ticket{ID: "t-9", TicketNumber: "TKT-20251030-0009"}
	tickets.On("FindLatestOpenByPhone", mock.Anything, "+919876543210").Return(existing, nil)
	api.On("AddResponse", mock.Anything, "t-9", domain.SenderCustomer, "any update?", mock.MatchedBy(func(opts service.AddResponseOptions) bool {
		return opts.SenderPhone == "+919876543210" && opts.Channel == domain.TicketSourceWhatsApp
	})).Return(&domain.TicketResponse{ID: "r-2"}, nil)

	result, err := svc.HandleWhatsApp(context.Background(), domain.WhatsAppInbound{
		From: "whatsapp:+919876543210",
		Body: "any update?",
	})

	require.NoError(t, err)
	assert.False(t, result.CreatedTicket)
	assert.Equal(t, "t-9", result.TicketID)
	api.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestHandleWhatsAppCreatesTicket(t *testing.T) {
	tickets, api, svc := newInboundFixture()
	tickets.On("FindLatestOpenByPhone", mock.Anything, "+919876543210").Return(nil, pgx.ErrNoRows)
	api.On("CreateTicket", mock.Anything, mock.MatchedBy(func(input service.CreateTicketInput) bool {
		return input.CustomerPhone == "+919876543210" &&
			input.Source == domain.TicketSourceWhatsApp &&
			input.CustomerName == "Asha" &&
			input.Subject == "I was charged twice"
	})).Return(&service.CreateTicketResult{TicketID: "t-10", TicketNumber: "TKT-20251030-0010"}, nil)

	result, err := svc.HandleWhatsApp(context.Background(), domain.WhatsAppInbound{
		From:        "whatsapp:+919876543210",
		Body:        "I was charged twice",
		ProfileName: "Asha",
	})

	require.NoError(t, err)
	assert.True(t, result.CreatedTicket)
}

func TestHandleDashboardCreatesTicket(t *testing.T) {
	_, api, svc := newInboundFixture()
	api.On("CreateTicket", mock.Anything, mock.MatchedBy(func(input service.CreateTicketInput) bool {
		return input.Source == domain.TicketSourceDashboard && input.CustomerEmail == "bo@example.com"
	})).Return(&service.CreateTicketResult{TicketID: "t-11", TicketNumber: "TKT-20251030-0011", AutoResponded: true}, nil)

	result, err := svc.HandleDashboard(context.Background(), domain.DashboardInbound{
		Email:   "bo@example.com",
		Subject: "Billing",
		Message: "charged twice",
	})

	require.NoError(t, err)
	assert.True(t, result.CreatedTicket)
	assert.True(t, result.AutoResponded)
}
