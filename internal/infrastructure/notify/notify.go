// Package notify delivers user-facing notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/library-catalog/internal/core/ports"
)

// LogNotifier writes every notification as a structured log line.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, note ports.Notification) {
	ev := n.logger.Info()
	if note.Severity == ports.SeverityDestructive {
		ev = n.logger.Warn()
	}
	ev.Str("title", note.Title).Str("severity", string(note.Severity)).Msg(note.Description)
}

// WriterNotifier prints notifications for a terminal user.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, note ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "✓"
	if note.Severity == ports.SeverityDestructive {
		prefix = "✗"
	}
	fmt.Fprintf(n.w, "%s %s: %s\n", prefix, note.Title, note.Description)
}

// Multi fans a notification out to every sink.
type Multi []ports.Notifier

func (m Multi) Notify(ctx context.Context, note ports.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, note)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, ports.Notification) {}
