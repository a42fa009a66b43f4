package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/mocks"
	"github.com/scamguard/support-service/internal/service"
)

func refundTemplate() *domain.AutoResponseTemplate {
	return &domain.AutoResponseTemplate{
		ID:      "tpl-1",
		Keyword: "refund",
		Body:    "Hi {{customer_name}}, we received your refund request. Your ticket {{ticket_number}} is being processed.",
		Enabled: true,
	}
}

func TestTryAutoRespondPersonalizesTemplate(t *testing.T) {
	templates := new(mocks.TemplateRepository)
	templates.On("FindEnabledByKeywords", mock.Anything, []string{"refund"}).Return(refundTemplate(), nil)
	templates.On("IncrementUsage", mock.Anything, "tpl-1").Return(nil)

	responder := service.NewAutoResponder(templates, zap.NewNop())
	name := "Asha"
	ticket := &domain.Ticket{TicketNumber: "TKT-20250101-0001", CustomerName: &name}

	result := responder.TryAutoRespond(context.Background(), ticket, "I would like a refund please")

	assert.True(t, result.Matched)
	assert.Equal(t, "tpl-1", result.TemplateID)
	assert.Equal(t, "Hi Asha, we received your refund request. Your ticket TKT-20250101-0001 is being processed.", result.ResponseText)
	templates.AssertExpectations(t)
}

func TestTryAutoRespondFallsBackToGenericName(t *testing.T) {
	templates := new(mocks.TemplateRepository)
	templates.On("FindEnabledByKeywords", mock.Anything, []string{"refund"}).Return(refundTemplate(), nil)
	templates.On("IncrementUsage", mock.Anything, "tpl-1").Return(nil)

	responder := service.NewAutoResponder(templates, zap.NewNop())
	ticket := &domain.Ticket{TicketNumber: "TKT-20250101-0002"}

	result := responder.TryAutoRespond(context.Background(), ticket, "refund my money")

	assert.True(t, result.Matched)
	assert.Contains(t, result.ResponseText, "Hi Customer,")
}

func TestTryAutoRespondNoKeywords(t *testing.T) {
	templates := new(mocks.TemplateRepository)

	responder := service.NewAutoResponder(templates, zap.NewNop())
	ticket := &domain.Ticket{TicketNumber: "TKT-20250101-0003"}

	result := responder.TryAutoRespond(context.Background(), ticket, "My widget died yesterday")

	assert.False(t, result.Matched)
	templates.AssertNotCalled(t, "FindEnabledByKeywords", mock.Anything, mock.Anything)
}

func TestTryAutoRespondNoMatchingTemplate(t *testing.T) {
	templates := new(mocks.TemplateRepository)
	templates.On("FindEnabledByKeywords", mock.Anything, []string{"refund"}).Return(nil, pgx.ErrNoRows)

	responder := service.NewAutoResponder(templates, zap.NewNop())
	ticket := &domain.Ticket{TicketNumber: "TKT-20250101-0004"}

	result := responder.TryAutoRespond(context.Background(), ticket, "refund")

	assert.False(t, result.Matched)
	templates.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestTryAutoRespondUsageCounterFailureIsSoft(t *testing.T) {
	templates := new(mocks.TemplateRepository)
	templates.On("FindEnabledByKeywords", mock.Anything, []string{"refund"}).Return(refundTemplate(), nil)
	templates.On("IncrementUsage", mock.Anything, "tpl-1").Return(errors.New("write failed"))

	responder := service.NewAutoResponder(templates, zap.NewNop())
	ticket := &domain.Ticket{TicketNumber: "TKT-20250101-0005"}

	result := responder.TryAutoRespond(context.Background(), ticket, "refund")

	assert.True(t, result.Matched)
}
