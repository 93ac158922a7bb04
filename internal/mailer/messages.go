package mailer

import (
	"fmt"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

var subjects = map[model.CodePurpose]string{
	model.PurposeLogin:         "Your admin login code",
	model.PurposePasswordReset: "Your admin password reset code",
	model.PurposeSetup:         "Confirm your recovery email",
}

// CodeMessage composes the email carrying a one-time code.
func CodeMessage(to string, purpose model.CodePurpose, code string, ttl time.Duration) model.EmailMessage {
	subject, ok := subjects[purpose]
	if !ok {
		subject = "Your verification code"
	}

	text := fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in %d minutes and can be used once. "+
			"If you did not request it, sign in and change your password.\n",
		code, int(ttl.Minutes()))

	return model.EmailMessage{
		To:      to,
		Subject: subject,
		Text:    text,
	}
}
