package notify

import (
	"context"
	"log/slog"
)

// LogDispatcher writes messages to the logger instead of sending them. Used
// in development when no gateway is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, phone, message string) error {
	d.logger.InfoContext(ctx, "sms dispatch (log only)", "phone", phone, "message", message)
	return nil
}
