// Package logx is the structured logger used across the analysis
// pipeline: plain log output plus Sentry breadcrumbs and events. It is a
// no-op at the Sentry layer unless a DSN has been configured.
package logx

import (
	"log"

	"github.com/getsentry/sentry-go"
)

// Fields is a structured log payload.
type Fields map[string]interface{}

// Info logs an informational message and records a Sentry breadcrumb.
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s %v", msg, fields)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type: "info", Category: "log", Message: msg,
			Data: map[string]interface{}(fields), Level: sentry.LevelInfo,
		})
	}
}

// Warn logs a warning and records a Sentry breadcrumb. Used by the
// chunked driver when a chunk's leaf detectors fail and are skipped.
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s %v", msg, fields)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type: "warning", Category: "log", Message: msg,
			Data: map[string]interface{}(fields), Level: sentry.LevelWarning,
		})
	}
}

// Error logs an error with structured fields and reports it to Sentry.
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %v", msg, err, fields)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for key, value := range fields {
				scope.SetContext(key, map[string]interface{}{"value": value})
			}
			hub.CaptureException(err)
		})
	}
}
