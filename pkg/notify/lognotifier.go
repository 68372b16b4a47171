package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// LogNotifier records manager notifications in the log instead of sending
// them. Used when no SMTP server is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification and always succeeds
func (n *LogNotifier) Notify(_ context.Context, storeID, message string, severity model.Severity) error {
	n.logger.Info("manager notification (log only)",
		zap.String("store", storeID),
		zap.String("severity", string(severity)),
		zap.String("message", message))
	return nil
}
