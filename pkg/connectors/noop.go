package connectors

import (
	"context"
	"log/slog"
)

// NewLoggingSet returns a connector set that logs every delivery and
// reports success. Used by the worker binary when no real connectors
// are configured, so workflows can be exercised end to end locally.
func NewLoggingSet(logger *slog.Logger) *Set {
	l := &loggingConnectors{logger: logger.With("module", "connectors")}

	return &Set{
		Email:         l,
		SMS:           l,
		Chat:          l,
		Notifications: l,
	}
}

type loggingConnectors struct {
	logger *slog.Logger
}

func (l *loggingConnectors) SendEmail(ctx context.Context, to, subject, _ string) (Outcome, error) {
	l.logger.InfoContext(ctx, "Email delivery (logging connector)", "to", to, "subject", subject)

	return Outcome{Success: true}, nil
}

func (l *loggingConnectors) SendSMS(ctx context.Context, to, _ string) (Outcome, error) {
	l.logger.InfoContext(ctx, "SMS delivery (logging connector)", "to", to)

	return Outcome{Success: true}, nil
}

func (l *loggingConnectors) PostMessage(ctx context.Context, channel, _ string) (Outcome, error) {
	l.logger.InfoContext(ctx, "Chat delivery (logging connector)", "channel", channel)

	return Outcome{Success: true}, nil
}

func (l *loggingConnectors) CreateNotification(ctx context.Context, userID, title, _ string) (Outcome, error) {
	l.logger.InfoContext(ctx, "Notification created (logging connector)", "user_id", userID, "title", title)

	return Outcome{Success: true}, nil
}
