package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scamguard/support-service/internal/api/dto"
	"github.com/scamguard/support-service/internal/domain"
	"github.com/scamguard/support-service/internal/repository"
	apperrors "github.com/scamguard/support-service/pkg/util"
)

// TemplatesHandler manages auto-response template administration.
type TemplatesHandler struct {
	templates repository.TemplateRepository
}

// NewTemplatesHandler constructs handler.
func NewTemplatesHandler(templates repository.TemplateRepository) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

// List GET /templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	enabledOnly := c.Query("enabled") == "true"
	templates, err := h.templates.List(c.UserContext(), enabledOnly)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		items = append(items, templateResponse(&templates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /templates/:id.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	template, err := h.templates.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": templateResponse(template)})
}

// Create POST /templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateTemplateRequest(&req); err != nil {
		return err
	}

	template := &domain.AutoResponseTemplate{
		Keyword:  strings.TrimSpace(req.Keyword),
		Body:     req.Body,
		Enabled:  true,
		Priority: 100,
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		template.Category = &category
	}
	if req.Enabled != nil {
		template.Enabled = *req.Enabled
	}
	if req.Priority != nil {
		template.Priority = *req.Priority
	}

	if err := h.templates.Create(c.UserContext(), template); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": templateResponse(template)})
}

// Update PATCH /templates/:id. Absent fields keep their current values.
func (h *TemplatesHandler) Update(c *fiber.Ctx) error {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	template, err := h.templates.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}

	if keyword := strings.TrimSpace(req.Keyword); keyword != "" {
		template.Keyword = keyword
	}
	if req.Body != "" {
		template.Body = req.Body
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		template.Category = &category
	}
	if req.Enabled != nil {
		template.Enabled = *req.Enabled
	}
	if req.Priority != nil {
		template.Priority = *req.Priority
	}

	if err := h.templates.Update(c.UserContext(), template); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": templateResponse(template)})
}

func validateTemplateRequest(req *dto.TemplateRequest) error {
	if strings.TrimSpace(req.Keyword) == "" {
		return apperrors.NewValidationError("keyword required", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	return nil
}

func templateResponse(template *domain.AutoResponseTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:          template.ID,
		Keyword:     template.Keyword,
		Body:        template.Body,
		Category:    template.Category,
		Enabled:     template.Enabled,
		Priority:    template.Priority,
		UsageCount:  template.UsageCount,
		SuccessRate: template.SuccessRate,
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
}
