package audit

import (
	"context"
	"errors"
)

// MultiLogger fans audit events out to several loggers. An event is
// considered logged when every backend accepts it.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines the given loggers into one.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log delivers the event to every backend, collecting errors.
func (l *MultiLogger) Log(ctx context.Context, event *Event) error {
	var errs []error
	for _, logger := range l.loggers {
		if err := logger.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every backend, collecting errors.
func (l *MultiLogger) Close() error {
	var errs []error
	for _, logger := range l.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
