package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Acquisition errors
	ErrAcquisition     ErrorCode = "acquisition_failed"
	ErrSourceExhausted ErrorCode = "source_exhausted"
	ErrInvalidFrame    ErrorCode = "invalid_frame"
	ErrNotRunning      ErrorCode = "not_running"

	// Sink errors
	ErrPublish   ErrorCode = "publish_failed"
	ErrSinkInit  ErrorCode = "sink_init_failed"
	ErrSinkClose ErrorCode = "sink_close_failed"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Telemetry errors
	ErrInitTelemetry   ErrorCode = "init_telemetry_failed"
	ErrRecordTelemetry ErrorCode = "record_telemetry_failed"
	ErrCloseTelemetry  ErrorCode = "close_telemetry_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrNotImplemented:   "Operation not implemented",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrMissingConfig:    "Missing configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read config file",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrAcquisition:      "Frame source unavailable",
	ErrSourceExhausted:  "Frame source exhausted",
	ErrInvalidFrame:     "Invalid frame",
	ErrNotRunning:       "No active session",
	ErrPublish:          "Failed to publish",
	ErrSinkInit:         "Failed to initialize sink",
	ErrSinkClose:        "Failed to close sink",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrInvalidOperation: "Invalid operation",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInitTelemetry:    "Failed to initialize telemetry",
	ErrRecordTelemetry:  "Failed to record telemetry",
	ErrCloseTelemetry:   "Failed to close telemetry",
	ErrInitApp:          "Failed to initialize application",
	ErrMainLoop:         "Error in main loop",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
