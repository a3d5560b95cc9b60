// Package sentryx reports fatal node errors to Sentry. Every function is a
// no-op until Init succeeds with a non-empty DSN.
package sentryx

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

var (
	initOnce sync.Once
	enabled  bool
)

// Init configures the Sentry client once. It reports whether reporting is
// enabled.
func Init(dsn, environment, serverName string) (bool, error) {
	var initErr error
	initOnce.Do(func() {
		if dsn == "" {
			return
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			Environment:      environment,
			ServerName:       serverName,
			AttachStacktrace: true,
		}); err != nil {
			initErr = fmt.Errorf("sentry init: %w", err)
			return
		}
		enabled = true
	})
	return enabled, initErr
}

func Enabled() bool {
	return enabled
}

// CaptureError reports err tagged with the component that raised it.
func CaptureError(err error, component string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetLevel(sentry.LevelFatal)
		sentry.CaptureException(err)
	})
}

func RecoverPanicAndCapture() {
	if !enabled {
		return
	}
	if rec := recover(); rec != nil {
		sentry.CurrentHub().Recover(rec)
		sentry.Flush(2 * time.Second)
		panic(rec)
	}
}

// Go runs fn on a new goroutine that reports a panic before crashing.
func Go(fn func()) {
	go func() {
		defer RecoverPanicAndCapture()
		fn()
	}()
}

func Flush(timeout time.Duration) {
	if !enabled {
		return
	}
	sentry.Flush(timeout)
}
