package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supplier-portal/internal/config"

	"go.uber.org/zap"
)

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type EmailService interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
}

type EmailServiceImpl struct {
	From     string
	Primary  Sender
	Fallback Sender
	Repo     *EmailRepository
	Logger   *zap.Logger
}

// NewEmailService picks the provider from EMAIL_PROVIDER. SMTP, when
// configured, is also the fallback for the other providers.
func NewEmailService(cfg *config.Config, repo *EmailRepository, logger *zap.Logger) (EmailService, error) {
	ec := cfg.Email

	var smtpSender Sender
	if ec.SMTPHost != "" {
		smtpSender = NewSMTPSender(ec.SMTPHost, ec.SMTPPort, ec.SMTPUser, ec.SMTPPassword)
	}

	svc := &EmailServiceImpl{From: ec.From, Repo: repo, Logger: logger}
	switch ec.Provider {
	case "sendgrid":
		svc.Primary = NewSendGridSender(ec.SendGridAPIKey, ec.SendGridURL)
		svc.Fallback = smtpSender
	case "ses":
		ses, err := NewSESSender(context.Background(), ec.SESRegion, ec.SESAccessKey, ec.SESSecretKey)
		if err != nil {
			return nil, err
		}
		svc.Primary = ses
		svc.Fallback = smtpSender
	case "smtp", "":
		svc.Primary = smtpSender
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", ec.Provider)
	}

	if svc.Primary == nil {
		logger.Warn("No email provider configured; outgoing mail will fail")
	}
	return svc, nil
}

func (s *EmailServiceImpl) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}
	if s.Primary == nil {
		return errors.New("email provider not configured")
	}

	msg := Message{From: s.From, To: to, Subject: subject, HTMLBody: body}

	var record *EmailLog
	if s.Repo != nil {
		record = &EmailLog{To: strings.Join(to, ","), Subject: subject, Status: EmailQueued}
		if err := s.Repo.Create(ctx, record); err != nil {
			s.Logger.Warn("Failed to record queued email", zap.Strings("to", to), zap.Error(err))
		}
	}

	provider := s.Primary.Name()
	err := s.Primary.Send(ctx, msg)
	if err != nil && s.Fallback != nil {
		s.Logger.Warn("Primary email provider failed, trying fallback",
			zap.String("provider", provider),
			zap.String("fallback", s.Fallback.Name()),
			zap.Error(err))
		provider = s.Fallback.Name()
		err = s.Fallback.Send(ctx, msg)
	}

	if record != nil && record.ID != 0 {
		status, errMsg := EmailSent, ""
		if err != nil {
			status, errMsg = EmailFailed, err.Error()
		}
		if err := s.Repo.UpdateStatus(ctx, record.ID, provider, status, errMsg); err != nil {
			s.Logger.Warn("Failed to update email log", zap.Uint("email_log_id", record.ID), zap.Error(err))
		}
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.Logger.Info("Email sent", zap.Strings("to", to), zap.String("provider", provider))
	return nil
}
