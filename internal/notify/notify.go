// Package notify delivers fire-and-forget notifications to the external mailer.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Templates understood by the downstream mailer.
const (
	TemplateAccessRequested = "access_request.created"
	TemplateAccessReviewed  = "access_request.reviewed"
	TemplateShareLinkIssued = "share_link.issued"
)

// Notification is the message handed to the mailer. Recipients are user IDs or email addresses.
type Notification struct {
	Recipients []string       `json:"recipients"`
	Template   string         `json:"template"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Notifier sends notifications. Callers treat errors as best-effort and never roll back on them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier only records notifications; used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "notification_skipped",
		slog.String("template", msg.Template),
		slog.Int("recipients", len(msg.Recipients)),
	)
	return nil
}
