package model

import "context"

// EmailMessage is a plain-text email.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers email through an external provider.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}
