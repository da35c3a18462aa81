package logger

import "codeberg.org/mutker/camvitals/internal/errors"

// Logger is the part of the package API that components depend on.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}
