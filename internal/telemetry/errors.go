package telemetry

import "codeberg.org/mutker/camvitals/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("telemetry_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("telemetry_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("telemetry_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("telemetry_transaction_failed")

	// Storage Errors
	ErrStorageInit  = errors.ErrInitTelemetry
	ErrStorageClose = errors.ErrCloseTelemetry

	// Collection Errors
	ErrRecord          = errors.ErrRecordTelemetry
	ErrInvalidSnapshot = errors.ErrorCode("telemetry_invalid_snapshot")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)

// stepFailure records which storage step failed. The cause stays
// reachable through Unwrap.
type stepFailure struct {
	Step string
	Path string
}

func (s stepFailure) String() string {
	if s.Path == "" {
		return s.Step
	}
	return s.Step + " " + s.Path
}

func stepError(code errors.ErrorCode, step string, err error) errors.Error {
	return errors.New().Wrap(code, err).WithData(stepFailure{Step: step})
}

func pathError(code errors.ErrorCode, step, path string, err error) errors.Error {
	return errors.New().Wrap(code, err).WithData(stepFailure{Step: step, Path: path})
}
