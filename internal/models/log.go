package models

import "time"

// LogLevel is the severity of a caller-facing log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// LogEntry is one entry in the engine's bounded log buffer, surfaced to the
// caller via the status API.
type LogEntry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Level   LogLevel  `json:"level"`
}
