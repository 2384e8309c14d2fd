package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/ports"
)

// ContactOptions configures contact form handling
type ContactOptions struct {
	CompanyName      string
	Recipient        string
	RequirePhone     bool
	PhonePattern     string
	SendConfirmation bool
}

// ContactService validates inquiries and dispatches notification mail
type ContactService struct {
	mailer    ports.Mailer
	opts      ContactOptions
	phone     *regexp.Regexp
	validator *Validator
	logger    *logger.Logger
}

// NewContactService creates a new contact service
func NewContactService(mailer ports.Mailer, opts ContactOptions, logger *logger.Logger) (*ContactService, error) {
	phone, err := regexp.Compile(opts.PhonePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid phone pattern: %w", err)
	}

	return &ContactService{
		mailer:    mailer,
		opts:      opts,
		phone:     phone,
		validator: NewValidator(),
		logger:    logger.WithComponent("contact_service"),
	}, nil
}

// Submit validates the inquiry and sends the company notification, plus a
// confirmation to the visitor when enabled
func (s *ContactService) Submit(ctx context.Context, req ports.ContactRequest) error {
	req = normalizeContact(req)

	if err := s.validate(req); err != nil {
		return err
	}

	notification := ports.MailMessage{
		To:      []string{s.opts.Recipient},
		ReplyTo: req.Email,
		Subject: notificationSubject(req),
		Body:    notificationBody(req),
	}
	if err := s.mailer.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to send contact notification: %w", err)
	}

	if s.opts.SendConfirmation {
		confirmation := ports.MailMessage{
			To:      []string{req.Email},
			Subject: fmt.Sprintf("Thank you for contacting %s", s.opts.CompanyName),
			Body:    confirmationBody(req, s.opts.CompanyName),
		}
		if err := s.mailer.Send(ctx, confirmation); err != nil {
			return fmt.Errorf("failed to send contact confirmation: %w", err)
		}
	}

	s.logger.Infow("Contact inquiry sent", "email", req.Email, "subject", req.Subject)

	return nil
}

func (s *ContactService) validate(req ports.ContactRequest) error {
	fields := map[string]string{}

	if err := s.validator.Struct(req); err != nil {
		var verr *entities.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}

	if _, bad := fields["phone"]; !bad {
		switch {
		case req.Phone == "" && s.opts.RequirePhone:
			fields["phone"] = "phone is required"
		case req.Phone != "" && !s.phone.MatchString(strings.ReplaceAll(req.Phone, " ", "")):
			fields["phone"] = "Please provide a valid phone number"
		}
	}

	if len(fields) == 0 {
		return nil
	}

	return entities.NewValidationError("Validation failed", fields)
}

func normalizeContact(req ports.ContactRequest) ports.ContactRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	return req
}

func notificationSubject(req ports.ContactRequest) string {
	if req.Subject != "" {
		return "Website inquiry: " + req.Subject
	}
	return "Website inquiry from " + req.Name
}

func notificationBody(req ports.ContactRequest) string {
	var b strings.Builder
	b.WriteString("New contact form submission\n\n")
	fmt.Fprintf(&b, "Name:    %s\n", req.Name)
	fmt.Fprintf(&b, "Email:   %s\n", req.Email)
	if req.Phone != "" {
		fmt.Fprintf(&b, "Phone:   %s\n", req.Phone)
	}
	if req.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", req.Message)
	return b.String()
}

func confirmationBody(req ports.ContactRequest, company string) string {
	return fmt.Sprintf(
		"Dear %s,\n\nThank you for reaching out to %s. We have received your message and will get back to you shortly.\n\nYour message:\n%s\n\nKind regards,\nThe %s team\n",
		req.Name, company, req.Message, company,
	)
}
