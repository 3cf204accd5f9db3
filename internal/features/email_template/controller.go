package email_template

import (
	"errors"
	"strconv"

	"supplier-portal/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type EmailTemplateController struct {
	Service EmailTemplateService
}

func NewEmailTemplateController(service EmailTemplateService) *EmailTemplateController {
	return &EmailTemplateController{Service: service}
}

func parseID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	return uint(id), err
}

func status(err error) int {
	if errors.Is(err, ErrNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// Create godoc
// @Summary Create email template
// @Description Create a new email template
// @Tags email_templates
// @Accept json
// @Produce json
// @Param template body EmailTemplate true "Email Template"
// @Success 201 {object} EmailTemplate
// @Failure 400 {object} map[string]interface{}
// @Router /api/email-templates [post]
func (c *EmailTemplateController) Create(ctx *fiber.Ctx) error {
	template := EmailTemplate{IsActive: true}
	if err := api.ParseAndValidate(ctx, &template); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, err)
	}
	template.ID = 0

	if err := c.Service.CreateTemplate(ctx.UserContext(), &template); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(template)
}

// Get godoc
// @Summary Get email template
// @Tags email_templates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} EmailTemplate
// @Failure 404 {object} map[string]interface{}
// @Router /api/email-templates/{id} [get]
func (c *EmailTemplateController) Get(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	template, err := c.Service.GetTemplate(ctx.UserContext(), id)
	if err != nil {
		return api.Error(ctx, status(err), err)
	}

	return ctx.JSON(template)
}

// List godoc
// @Summary List email templates
// @Tags email_templates
// @Produce json
// @Success 200 {array} EmailTemplate
// @Router /api/email-templates [get]
func (c *EmailTemplateController) List(ctx *fiber.Ctx) error {
	templates, err := c.Service.ListTemplates(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(templates)
}

// Update godoc
// @Summary Update email template
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param template body EmailTemplate true "Email Template"
// @Success 200 {object} EmailTemplate
// @Router /api/email-templates/{id} [put]
func (c *EmailTemplateController) Update(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var template EmailTemplate
	if err := api.ParseAndValidate(ctx, &template); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, err)
	}
	template.ID = id

	if err := c.Service.UpdateTemplate(ctx.UserContext(), &template); err != nil {
		return api.Error(ctx, status(err), err)
	}

	return ctx.JSON(template)
}

func (c *EmailTemplateController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	if err := c.Service.DeleteTemplate(ctx.UserContext(), id); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

type TestEmailRequest struct {
	To       string            `json:"to" validate:"required,email"`
	TestData map[string]string `json:"test_data"`
}

// SendTestEmail godoc
// @Summary Send a test email
// @Description Renders the template with the provided data and sends it to the recipient
// @Tags email_templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body TestEmailRequest true "Test Email Details"
// @Success 200 {object} map[string]string
// @Router /api/email-templates/{id}/test [post]
func (c *EmailTemplateController) SendTestEmail(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var req TestEmailRequest
	if err := api.ParseAndValidate(ctx, &req); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, err)
	}

	if err := c.Service.SendTestEmail(ctx.UserContext(), id, req.To, req.TestData); err != nil {
		return api.Error(ctx, status(err), err)
	}

	return ctx.JSON(fiber.Map{"message": "Test email sent successfully"})
}
