package notify

import (
	"context"
	"log/slog"
)

// LogSender logs emails instead of sending them. It stands in for Client when
// no API key is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, email Email) error {
	s.logger.InfoContext(ctx, "notification not sent: no Notify API key configured",
		"template_id", email.TemplateID,
		"reference", email.Reference,
	)
	return nil
}
