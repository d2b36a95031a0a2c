// Package sender доставляет письма с учётными данными новым пользователям.
//
// Без настроенного SMTP (transport == nil) отправка имитируется: в лог
// пишется адресат и ссылка входа, но не пароль.
package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// CredentialsSubject тема письма с учётными данными.
const CredentialsSubject = "Your TaskManager Account Credentials"

var credentialsTemplate = template.Must(template.New("credentials").Parse(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
    <h2 style="color: #137fec;">Welcome to TaskManager!</h2>
    <p>Hello <strong>{{.Fullname}}</strong>,</p>
    <p>Your account has been created by the administrator. Here are your login credentials:</p>
    <div style="background-color: #f6f7f8; padding: 15px; border-radius: 5px; margin: 20px 0;">
      <p style="margin: 5px 0;"><strong>Login URL:</strong> <a href="{{.LoginURL}}">TaskManager</a></p>
      <p style="margin: 5px 0;"><strong>Email:</strong> {{.Email}}</p>
      <p style="margin: 5px 0;"><strong>Temporary Password:</strong> {{.Password}}</p>
    </div>
    <p style="color: #ff4444; font-size: 0.9em;">Please change your password after your first login.</p>
    <p>Best regards,<br>The TaskManager Team</p>
  </div>
</body>
</html>`))

// Sender отправляет письма через SMTP транспорт.
type Sender struct {
	transport smtp.TransportInterface
	fromName  string
	log       *slog.Logger
}

// New создает Sender. Если transport равен nil, письма только логируются.
func New(log *slog.Logger, transport smtp.TransportInterface, fromName string) *Sender {
	return &Sender{
		transport: transport,
		fromName:  fromName,
		log:       log,
	}
}

// RenderCredentials собирает HTML‑тело письма с учётными данными.
func RenderCredentials(msg models.CredentialsMessage) (string, error) {
	var buf bytes.Buffer
	if err := credentialsTemplate.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("sender.RenderCredentials: %w", err)
	}
	return buf.String(), nil
}

// Deliver отправляет письмо с учётными данными.
func (s *Sender) Deliver(ctx context.Context, msg models.CredentialsMessage) error {
	const op = "sender.Deliver"
	log := s.log.With(sl.Op(op), slog.String("to", msg.Email))

	if s.transport == nil {
		log.Info("smtp is not configured, simulated credentials email",
			slog.String("fullname", msg.Fullname),
			slog.String("login_url", msg.LoginURL),
		)
		return nil
	}

	body, err := RenderCredentials(msg)
	if err != nil {
		log.Error("failed to render email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.sendEmail(ctx, msg.Email, CredentialsSubject, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandleMessage разбирает сообщение из очереди и доставляет письмо.
func (s *Sender) HandleMessage(ctx context.Context, body []byte) error {
	var msg models.CredentialsMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if msg.Email == "" {
		return fmt.Errorf("message without recipient")
	}
	return s.Deliver(ctx, msg)
}

func (s *Sender) sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	from := s.transport.From()
	header := (&mail.Address{Name: s.fromName, Address: from}).String()
	msg := strings.Join([]string{
		"From: " + header,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	if err := client.Rcpt(to); err != nil {
		s.log.Error("failed to set RCPT TO", slog.String("recipient", to), sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", to))
	return nil
}
