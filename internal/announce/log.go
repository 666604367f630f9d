package announce

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/initiative-bot/internal/logging"
)

// Log writes announcements to a logger. It is used when no Discord token
// is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.Component(logger, "announce")}
}

func (l *Log) Announce(ctx context.Context, messages ...string) error {
	logger := logging.FromContext(ctx, l.logger)
	for _, msg := range nonEmpty(messages) {
		logger.Info("announcement", "message", msg)
	}
	return nil
}
