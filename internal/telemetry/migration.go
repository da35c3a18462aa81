package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
)

// backupDatabase copies the live database into dir before a schema reset.
func backupDatabase(db *sql.DB, dir string, version int, log logger.Logger) (string, error) {
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", pathError(ErrSchemaMigrationFailed, "create_backup_dir", dir, err)
	}

	name := fmt.Sprintf("telemetry_v%d_%s.db", version, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return "", pathError(ErrSchemaMigrationFailed, "create_backup", path, err)
	}

	log.Info().Str("path", path).Int("version", version).Msg("Telemetry database backed up")
	return path, nil
}

// ValidateAndUpdateSchema brings db to SchemaVersion. Telemetry rows are
// disposable, so a mismatched schema is backed up into backupDir and
// recreated rather than migrated in place.
func ValidateAndUpdateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return errors.New().Wrap(ErrSchemaValidationFailed, err)
	}

	switch version {
	case SchemaVersion:
		log.Debug().Int("version", version).Msg("Telemetry schema up to date")
		return nil
	case 0:
		log.Debug().Msg("Telemetry schema missing")
	default:
		log.Warn().
			Int("found", version).
			Int("expected", SchemaVersion).
			Msg("Telemetry schema version mismatch, recreating")
		if _, err := backupDatabase(db, backupDir, version, log); err != nil {
			return err
		}
	}

	if err := dropTables(db, log); err != nil {
		return err
	}
	return InitSchema(db, log)
}

func dropTables(db *sql.DB, log logger.Logger) error {
	return inTx(db, ErrSchemaMigrationFailed, log, func(tx *sql.Tx) error {
		for _, table := range []string{"pipeline_health", "schema_versions"} {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return stepError(ErrSchemaMigrationFailed, "drop_"+table, err)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing on success and rolling back
// otherwise.
func inTx(db *sql.DB, code errors.ErrorCode, log logger.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return stepError(code, "begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Debug().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return stepError(code, "commit", err)
	}
	return nil
}
