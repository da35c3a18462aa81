package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger with the given level name ("debug", "info",
// "warning", "error"). Unknown names fall back to info.
func Init(level string, isService bool) {
	InitWithWriter(os.Stdout, level, isService)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(out io.Writer, level string, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(ParseLevel(level))
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Fatal().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// ErrorWithContext logs a coded error tagged with the component and
// operation it came from.
func ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	return &LogEvent{log.Error().
		Str("component", component).
		Str("operation", operation).
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

type packageLogger struct{}

// Default returns the package-level logger behind the Logger interface.
func Default() Logger {
	return packageLogger{}
}

func (packageLogger) Debug() *LogEvent { return Debug() }
func (packageLogger) Info() *LogEvent  { return Info() }
func (packageLogger) Warn() *LogEvent  { return Warn() }
func (packageLogger) Error() *LogEvent { return Error() }

func (packageLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return ErrorWithCode(err)
}
