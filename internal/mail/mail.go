// Package mail delivers contact form submissions to the site operator
// through SendGrid.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/bookshouse/bookshouse-server/internal/errors"
)

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Delivery describes an accepted hand-off to the mail provider.
type Delivery struct {
	// ReferenceID identifies this delivery in our logs. It is generated
	// locally, not by the provider.
	ReferenceID string `json:"reference_id"`
}

// Mailer delivers contact messages to the operator inbox.
type Mailer interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) (*Delivery, error)
}

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client       *sendgrid.Client
	senderEmail  string
	operatorAddr string
	logger       *slog.Logger
}

// NewSendGridMailer creates a mailer. senderEmail must be a verified
// SendGrid sender; operatorAddr is where submissions land.
func NewSendGridMailer(apiKey, senderEmail, operatorAddr string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:       sendgrid.NewSendClient(apiKey),
		senderEmail:  senderEmail,
		operatorAddr: operatorAddr,
		logger:       logger,
	}
}

// SendContactMessage composes and sends the submission. The visitor's
// address goes into Reply-To so the operator can respond directly.
func (m *SendGridMailer) SendContactMessage(ctx context.Context, msg ContactMessage) (*Delivery, error) {
	ref := uuid.NewString()

	message := composeContactEmail(m.senderEmail, m.operatorAddr, msg)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, errors.DeliveryFailed("could not deliver contact message").WithCause(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.DeliveryFailed(fmt.Sprintf("mail provider rejected message with status %d", resp.StatusCode))
	}

	if m.logger != nil {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "contact message delivered",
			slog.String("reference_id", ref),
			slog.String("from", msg.Email),
			slog.Int("provider_status", resp.StatusCode),
		)
	}
	return &Delivery{ReferenceID: ref}, nil
}

// composeContactEmail builds the SendGrid message for a submission.
func composeContactEmail(senderEmail, operatorAddr string, msg ContactMessage) *sgmail.SGMailV3 {
	from := sgmail.NewEmail("BooksHouse", senderEmail)
	to := sgmail.NewEmail("", operatorAddr)
	subject := "BooksHouse Form Message from " + msg.Name

	plain := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
	htmlBody := fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(msg.Name), html.EscapeString(msg.Email), html.EscapeString(msg.Message))

	email := sgmail.NewSingleEmail(from, subject, to, plain, htmlBody)
	email.SetReplyTo(sgmail.NewEmail(msg.Name, msg.Email))
	return email
}

// NoopMailer accepts every message without delivering it. Used in tests
// and when no SendGrid key is configured.
type NoopMailer struct {
	logger *slog.Logger

	// Sent records accepted messages for test assertions.
	Sent []ContactMessage
}

// NewNoopMailer creates a mailer that drops messages.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// SendContactMessage records the message and pretends it was delivered.
func (m *NoopMailer) SendContactMessage(ctx context.Context, msg ContactMessage) (*Delivery, error) {
	m.Sent = append(m.Sent, msg)
	if m.logger != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "mail delivery disabled, dropping contact message",
			slog.String("from", msg.Email),
		)
	}
	return &Delivery{ReferenceID: uuid.NewString()}, nil
}
