package service

import (
	"context"
	"log/slog"

	"github.com/bookshouse/bookshouse-server/internal/mail"
	"github.com/bookshouse/bookshouse-server/internal/validation"
)

// ContactService forwards contact form submissions to the operator inbox.
type ContactService struct {
	mailer    mail.Mailer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(mailer mail.Mailer, v *validation.Validator, logger *slog.Logger) *ContactService {
	return &ContactService{
		mailer:    mailer,
		validator: v,
		logger:    logger,
	}
}

// ContactRequest contains a contact form submission.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=10000"`
}

// Submit validates and delivers a contact form submission.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*mail.Delivery, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return s.mailer.SendContactMessage(ctx, mail.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
}
