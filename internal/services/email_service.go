package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// Mailer delivers composed messages; *gomail.Dialer satisfies it
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	config config.SMTPConfig
	mailer Mailer
}

// NewEmailService returns a service that sends through SMTP, or a disabled
// one when no host is configured
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	svc := &EmailService{config: cfg}
	if cfg.Enabled() {
		svc.mailer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return svc
}

// NewEmailServiceWithMailer is used by tests to capture outgoing mail
func NewEmailServiceWithMailer(cfg config.SMTPConfig, mailer Mailer) *EmailService {
	return &EmailService{config: cfg, mailer: mailer}
}

// PaymentDecisionEmail is the data for payment_decision.html
type PaymentDecisionEmail struct {
	Name      string
	PlanName  string
	PaymentID uint
	Amount    string
	Balance   string
	Approved  bool
	Reason    string
}

// BulkSettledEmail is the data for bulk_settled.html
type BulkSettledEmail struct {
	Name    string
	Period  string
	Amount  string
	Balance string
}

// checkEmailPreconditions reports whether mail should be sent to address
func (s *EmailService) checkEmailPreconditions(address, operation string) (bool, error) {
	if s.mailer == nil {
		logger.Debug("email disabled, skipping", "operation", operation)
		return false, nil
	}
	if strings.TrimSpace(address) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

func (s *EmailService) SendPaymentDecision(ctx context.Context, to string, data PaymentDecisionEmail) error {
	ok, err := s.checkEmailPreconditions(to, "payment decision")
	if !ok {
		return err
	}

	body, err := s.renderTemplate("payment_decision.html", data)
	if err != nil {
		return err
	}

	subject := "Your contribution was approved"
	if !data.Approved {
		subject = "Your contribution was not approved"
	}
	return s.send(to, subject, body)
}

func (s *EmailService) SendBulkSettled(ctx context.Context, to string, data BulkSettledEmail) error {
	ok, err := s.checkEmailPreconditions(to, "bulk settled")
	if !ok {
		return err
	}

	body, err := s.renderTemplate("bulk_settled.html", data)
	if err != nil {
		return err
	}
	return s.send(to, "Your contribution was recorded", body)
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.mailer.DialAndSend(m); err != nil {
		logger.Error("failed to send email", "to", to, "subject", subject, logger.Err(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
