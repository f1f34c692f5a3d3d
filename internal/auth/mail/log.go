package mail

import (
	"context"
	"log/slog"
)

// LogSender logs instead of delivering. Used in dev and tests where the
// emailed code is read from the service log.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	s.Logger.Info("mail_send",
		"to", to,
		"subject", subject,
		"body", textBody,
	)
	return nil
}
