package ports

import "context"

// Severity of a user-facing notification.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient message for the presentation layer.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier receives one notification per mutating operation outcome.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
