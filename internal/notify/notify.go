// Package notify surfaces transient success/failure feedback to the user,
// the toast analogue of the mobile app.
package notify

import "github.com/barberpro/barberpro-mobile/pkg/logging"

// Notifier receives user-facing notifications. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// LogNotifier writes notifications to the application logger. The CLI uses
// it as its toast surface.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a logging-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(title, message string) {
	n.logger.Info("notification", "kind", "success", "title", title, "message", message)
}

func (n *LogNotifier) Error(title, message string) {
	n.logger.Warn("notification", "kind", "error", "title", title, "message", message)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Success(title, message string) {}

func (Nop) Error(title, message string) {}
