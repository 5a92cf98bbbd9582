package insight

import (
	"github.com/getsentry/sentry-go"
)

// ErrorReporter receives cycle failures
type ErrorReporter interface {
	Report(err error, tags map[string]string)
}

type nopReporter struct{}

func (nopReporter) Report(error, map[string]string) {}

// SentryReporter forwards cycle failures to Sentry.
// sentry.Init must have been called; otherwise events are dropped.
type SentryReporter struct{}

// Report implements ErrorReporter
func (SentryReporter) Report(err error, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}
