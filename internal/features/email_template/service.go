package email_template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supplier-portal/internal/features/email"

	"go.uber.org/zap"
)

var ErrInactive = errors.New("template is inactive")

type EmailTemplateService interface {
	CreateTemplate(ctx context.Context, template *EmailTemplate) error
	GetTemplate(ctx context.Context, id uint) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]EmailTemplate, error)
	UpdateTemplate(ctx context.Context, template *EmailTemplate) error
	DeleteTemplate(ctx context.Context, id uint) error
	RenderTemplate(ctx context.Context, name string, vars map[string]string) (string, string, error)
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
	SendTestEmail(ctx context.Context, id uint, to string, vars map[string]string) error
	SeedDefaults(ctx context.Context) error
}

type EmailTemplateServiceImpl struct {
	Repo         EmailTemplateRepository
	EmailService email.EmailService
	Logger       *zap.Logger
}

func NewEmailTemplateService(repo EmailTemplateRepository, emailService email.EmailService, logger *zap.Logger) EmailTemplateService {
	return &EmailTemplateServiceImpl{
		Repo:         repo,
		EmailService: emailService,
		Logger:       logger,
	}
}

func (s *EmailTemplateServiceImpl) CreateTemplate(ctx context.Context, template *EmailTemplate) error {
	if template.Name == "" {
		return errors.New("template name is required")
	}
	if template.Subject == "" {
		return errors.New("subject is required")
	}
	return s.Repo.Create(ctx, template)
}

func (s *EmailTemplateServiceImpl) GetTemplate(ctx context.Context, id uint) (*EmailTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *EmailTemplateServiceImpl) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	return s.Repo.List(ctx)
}

func (s *EmailTemplateServiceImpl) UpdateTemplate(ctx context.Context, template *EmailTemplate) error {
	return s.Repo.Update(ctx, template)
}

func (s *EmailTemplateServiceImpl) DeleteTemplate(ctx context.Context, id uint) error {
	return s.Repo.Delete(ctx, id)
}

func (s *EmailTemplateServiceImpl) RenderTemplate(ctx context.Context, name string, vars map[string]string) (string, string, error) {
	template, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", name, err)
	}
	if !template.IsActive {
		return "", "", fmt.Errorf("%s: %w", name, ErrInactive)
	}
	return Render(template.Subject, vars), Render(template.Body, vars), nil
}

// Render substitutes {{key}} tokens. Unknown tokens are left in place.
func Render(text string, vars map[string]string) string {
	for key, value := range vars {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}

func (s *EmailTemplateServiceImpl) SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error {
	subject, body, err := s.RenderTemplate(ctx, name, vars)
	if err != nil {
		return err
	}
	return s.EmailService.SendEmail(ctx, to, subject, body)
}

func (s *EmailTemplateServiceImpl) SendTestEmail(ctx context.Context, id uint, to string, vars map[string]string) error {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.EmailService.SendEmail(ctx, []string{to}, Render(template.Subject, vars), Render(template.Body, vars))
}

func (s *EmailTemplateServiceImpl) SeedDefaults(ctx context.Context) error {
	for _, def := range Defaults {
		_, err := s.Repo.GetByName(ctx, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		t := def
		t.IsActive = true
		if err := s.Repo.Create(ctx, &t); err != nil {
			return fmt.Errorf("seed %s: %w", def.Name, err)
		}
		s.Logger.Info("Seeded email template", zap.String("name", def.Name))
	}
	return nil
}
