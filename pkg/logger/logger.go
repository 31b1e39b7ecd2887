// Package logger provides leveled, component-tagged logging for the gateway.
// Every subsystem logs through a component name ("router", "bus", "telegram")
// so a single game's traffic can be followed across layers.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var log atomic.Pointer[slog.Logger]

func init() {
	log.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// Init reconfigures the global logger. level is one of debug|info|warn|error;
// anything else falls back to info.
func Init(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})))
}

func attrs(component string, fields map[string]interface{}) []any {
	out := make([]any, 0, 2+2*len(fields))
	out = append(out, "component", component)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

// DebugC logs a debug message tagged with a component name.
func DebugC(component, msg string) { log.Load().Debug(msg, "component", component) }

// InfoC logs an info message tagged with a component name.
func InfoC(component, msg string) { log.Load().Info(msg, "component", component) }

// WarnC logs a warning tagged with a component name.
func WarnC(component, msg string) { log.Load().Warn(msg, "component", component) }

// ErrorC logs an error tagged with a component name.
func ErrorC(component, msg string) { log.Load().Error(msg, "component", component) }

// DebugCF logs a debug message with structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	log.Load().Debug(msg, attrs(component, fields)...)
}

// InfoCF logs an info message with structured fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	log.Load().Info(msg, attrs(component, fields)...)
}

// WarnCF logs a warning with structured fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	log.Load().Warn(msg, attrs(component, fields)...)
}

// ErrorCF logs an error with structured fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	log.Load().Error(msg, attrs(component, fields)...)
}
