package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"shopkart/pkg/helpers"
)

// CodeMailer formats one-time-code emails and hands them to the email
// worker via RabbitMQ. With Enabled false (local development) the codes are
// logged instead of queued.
type CodeMailer struct {
	Publisher *helpers.RabbitPublisher
	Logger    *logrus.Logger
	AppName   string
	Enabled   bool
}

func NewCodeMailer(pub *helpers.RabbitPublisher, logger *logrus.Logger, appName string, enabled bool) *CodeMailer {
	return &CodeMailer{Publisher: pub, Logger: logger, AppName: appName, Enabled: enabled}
}

func (m *CodeMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	subject := fmt.Sprintf("%s - verify your email", m.AppName)
	text := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	html := codeEmailHTML("Verify your email", "Use this code to verify your email address:", code)
	return m.enqueue(ctx, email, subject, text, html)
}

func (m *CodeMailer) SendResetCode(ctx context.Context, email, code string) error {
	subject := fmt.Sprintf("%s - password reset code", m.AppName)
	text := fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes.", code)
	html := codeEmailHTML("Reset your password", "Use this code to reset your password:", code)
	return m.enqueue(ctx, email, subject, text, html)
}

func (m *CodeMailer) enqueue(ctx context.Context, to, subject, text, html string) error {
	if !m.Enabled {
		if m.Logger != nil {
			m.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail sending disabled; skipping")
		}
		return nil
	}
	if m.Publisher == nil {
		return fmt.Errorf("mailer: no publisher configured")
	}
	return m.Publisher.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: text, HTML: html})
}

func codeEmailHTML(title, lead, code string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto;padding:24px">
  <h2 style="color:#1a1a2e">%s</h2>
  <p>%s</p>
  <p style="font-size:32px;letter-spacing:8px;font-weight:bold;text-align:center;padding:16px;background:#f4f4f8;border-radius:8px">%s</p>
  <p style="color:#666">This code expires in 5 minutes. If you did not request it, you can ignore this email.</p>
</div>`, title, lead, code)
}
