package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/mnuddindev/winoreat/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings, passed in from app config
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPPort > 0 && c.FromEmail != ""
}

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends the notification emails of the bug board.
type Mailer struct {
	Config EmailConfig
	Sender Sender
	Logger *logger.Logger
}

// NewMailer builds a Mailer dialing the configured SMTP server.
func NewMailer(config EmailConfig, log *logger.Logger) *Mailer {
	return &Mailer{
		Config: config,
		Sender: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword),
		Logger: log,
	}
}

// BuildBugAnswerMessage composes the answer email for a bug report.
func (m *Mailer) BuildBugAnswerMessage(email, title, answer string) *gomail.Message {
	textBody := fmt.Sprintf(`안녕하세요,

제보해주신 "%s"에 대한 답변입니다.

%s

%s
© %d 위너잇
`, title, answer, m.Config.AppURL, time.Now().Year())

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.Config.FromEmail)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", fmt.Sprintf("[위너잇] 버그 제보 답변: %s", title))
	msg.SetBody("text/plain", textBody)
	return msg
}

// SendBugAnswer emails the answer of a bug report to the reporter.
func (m *Mailer) SendBugAnswer(ctx context.Context, email, title, answer string) error {
	msg := m.BuildBugAnswerMessage(email, title, answer)
	if err := m.Sender.DialAndSend(msg); err != nil {
		if m.Logger != nil {
			m.Logger.Warn(ctx).WithMeta(Map{"email": email, "error": err.Error()}).Logs("Failed to send bug answer email")
		}
		return WrapError(err, KindInternal, "Failed to send bug answer email")
	}

	if m.Logger != nil {
		m.Logger.Info(ctx).WithMeta(Map{"email": email}).Logs("Bug answer email sent")
	}
	return nil
}
