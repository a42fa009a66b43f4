package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/keywords"
	"github.com/scamguard/support-service/internal/repository"
)

// AutoResponseResult reports the outcome of an auto-response attempt.
// Matched=false is a normal negative outcome; callers fall through to staff
// assignment.
type AutoResponseResult struct {
	Matched      bool
	ResponseText string
	TemplateID   string
}

// AutoResponder matches extracted keywords against enabled templates and
// personalizes the winning template for a ticket.
type AutoResponder struct {
	templates repository.TemplateRepository
	logger    *zap.Logger
}

// NewAutoResponder constructs the responder.
func NewAutoResponder(templates repository.TemplateRepository, logger *zap.Logger) *AutoResponder {
	return &AutoResponder{templates: templates, logger: logger}
}

// TryAutoRespond attempts to resolve a ticket with a canned reply. Its only
// side effect is the usage-counter increment; the caller applies any ticket
// status change.
func (a *AutoResponder) TryAutoRespond(ctx context.Context, ticket *domain.Ticket, message string) AutoResponseResult {
	tags := keywords.Extract(message)
	if len(tags) == 0 {
		return AutoResponseResult{}
	}

	tagStrings := make([]string, len(tags))
	for i, tag := range tags {
		tagStrings[i] = string(tag)
	}

	template, err := a.templates.FindEnabledByKeywords(ctx, tagStrings)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, repository.ErrUnavailable) {
			a.logger.Warn("template lookup failed", zap.Error(err))
		}
		return AutoResponseResult{}
	}

	text := template.Personalize(ticket.DisplayName(), ticket.TicketNumber)

	if err := a.templates.IncrementUsage(ctx, template.ID); err != nil {
		a.logger.Warn("failed to increment template usage",
			zap.String("template_id", template.ID), zap.Error(err))
	}

	return AutoResponseResult{
		Matched:      true,
		ResponseText: text,
		TemplateID:   template.ID,
	}
}
