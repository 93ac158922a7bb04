// Package mailer delivers transactional email through SendGrid.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

const sendEndpoint = "/v3/mail/send"

var _ model.Mailer = (*SendGrid)(nil)

// Options configures the SendGrid sender.
type Options struct {
	APIKey   string
	From     string
	FromName string
	// BaseURL overrides the API host; empty means the public endpoint.
	BaseURL string
}

// SendGrid sends plain-text mail through the v3 API.
type SendGrid struct {
	opts   Options
	logger *logger.Logger
}

func NewSendGrid(opts Options, logger *logger.Logger) *SendGrid {
	return &SendGrid{opts: opts, logger: logger}
}

// Send returns an error wrapping model.ErrDependency when the provider is not
// configured or does not accept the message.
func (s *SendGrid) Send(ctx context.Context, msg model.EmailMessage) error {
	if s.opts.APIKey == "" || s.opts.From == "" {
		s.logger.Warn("Mailer: sendgrid is not configured, dropping message",
			"subject", msg.Subject)
		return fmt.Errorf("%w: email provider not configured", model.ErrDependency)
	}

	from := mail.NewEmail(s.opts.FromName, s.opts.From)
	to := mail.NewEmail("", msg.To)
	body := mail.GetRequestBody(mail.NewSingleEmail(from, msg.Subject, to, msg.Text, ""))

	request := sendgrid.GetRequest(s.opts.APIKey, sendEndpoint, s.opts.BaseURL)
	request.Method = rest.Post
	request.Body = body

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		s.logger.Error("Mailer: sendgrid request failed",
			"subject", msg.Subject,
			"error", err.Error())
		return fmt.Errorf("%w: sendgrid request failed: %v", model.ErrDependency, err)
	}

	if response.StatusCode >= 300 {
		s.logger.Error("Mailer: sendgrid rejected message",
			"subject", msg.Subject,
			"status", response.StatusCode)
		return fmt.Errorf("%w: sendgrid returned status %d", model.ErrDependency, response.StatusCode)
	}

	s.logger.Debug("Mailer: message accepted",
		"subject", msg.Subject,
		"status", response.StatusCode)

	return nil
}
