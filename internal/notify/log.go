package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them. It stands
// in for an SMS gateway, and for email when no provider key is configured.
type LogSender struct {
	log *zap.Logger
	now func() time.Time
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("notify"), now: time.Now}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	s.log.Info("notification",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return Outcome{Provider: "log", SentAt: s.now()}, nil
}
