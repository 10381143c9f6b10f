package utils

import (
	"log"
	"sync/atomic"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

var rollbarEnabled atomic.Bool

// InitErrorReporting points rollbar at token. An empty token keeps error
// reporting local to the log.
func InitErrorReporting(token, env, codeVersion string) {
	if token == "" {
		rollbar.SetEnabled(false)
		log.Println("[ERROR-REPORTING] ROLLBAR_TOKEN not set, errors are only logged")
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(true)
	rollbarEnabled.Store(true)
	log.Println("[ERROR-REPORTING] Rollbar reporting enabled")
}

// ReportError logs err with extras and forwards it to rollbar when enabled
func ReportError(err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[ERROR] %+v %v", err, extras)
	if rollbarEnabled.Load() {
		rollbar.Error(err, extras)
	}
}

// CloseErrorReporting flushes queued reports
func CloseErrorReporting() {
	if rollbarEnabled.Load() {
		rollbar.Close()
	}
}
