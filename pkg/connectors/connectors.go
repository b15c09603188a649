// Package connectors declares the outbound delivery capabilities the
// engine depends on but does not implement. Each call returns an
// Outcome with captured latency; the engine treats any non-success as a
// retryable action failure.
package connectors

import "context"

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Success   bool   `json:"success"`
	LatencyMs int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

// EmailSender delivers email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (Outcome, error)
}

// SMSSender delivers text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (Outcome, error)
}

// ChatPoster posts messages to a chat channel.
type ChatPoster interface {
	PostMessage(ctx context.Context, channel, text string) (Outcome, error)
}

// NotificationCreator creates in-app notifications for a user.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, userID, title, message string) (Outcome, error)
}

// Set bundles the connectors wired into the action registry at startup.
type Set struct {
	Email         EmailSender
	SMS           SMSSender
	Chat          ChatPoster
	Notifications NotificationCreator
}
