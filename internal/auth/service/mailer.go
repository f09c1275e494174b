package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

// Mailer delivers email verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogMailer writes verification codes to the service log instead of sending
// mail. It is meant for development environments.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	slogx.FromContext(ctx).Info("verification code issued",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
