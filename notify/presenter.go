package notify

import (
	"log/slog"
	"time"
)

// Presenter renders a transient message to the user. Presentation is
// inherently best-effort; callers must tolerate failure.
type Presenter interface {
	Present(title, message string, severity Severity, duration time.Duration) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(title, message string, severity Severity, duration time.Duration) error

func (f PresenterFunc) Present(title, message string, severity Severity, duration time.Duration) error {
	return f(title, message, severity, duration)
}

// LogPresenter writes presentations to a structured logger. It is the usual
// fallback when a richer presenter fails.
type LogPresenter struct {
	Logger *slog.Logger
}

var _ Presenter = (*LogPresenter)(nil)

func (p *LogPresenter) Present(title, message string, severity Severity, duration time.Duration) error {
	p.Logger.Info("notification",
		"title", title,
		"message", message,
		"severity", string(severity),
	)
	return nil
}
