package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/camvitals/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS pipeline_health (
	       id              INTEGER PRIMARY KEY AUTOINCREMENT,
	       timestamp       INTEGER NOT NULL,
	       session_id      TEXT NOT NULL,
	       frames_received INTEGER NOT NULL CHECK (frames_received >= 0),
	       frames_skipped  INTEGER NOT NULL CHECK (frames_skipped >= 0),
	       fps_mean        REAL NOT NULL,
	       fps_stddev      REAL NOT NULL,
	       jitter_mean_us  INTEGER NOT NULL,
	       jitter_max_us   INTEGER NOT NULL,
	       buffered        INTEGER NOT NULL,
	       beats           INTEGER NOT NULL,
	       cycle_us        INTEGER NOT NULL
	   );
	   CREATE INDEX IF NOT EXISTS pipeline_health_session
	       ON pipeline_health (session_id, timestamp);`

	insertHealthSQL = `
    INSERT INTO pipeline_health (
        timestamp, session_id,
        frames_received, frames_skipped,
        fps_mean, fps_stddev,
        jitter_mean_us, jitter_max_us,
        buffered, beats, cycle_us
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the tables and records SchemaVersion.
func InitSchema(db *sql.DB, log logger.Logger) error {
	err := inTx(db, ErrSchemaInitFailed, log, func(tx *sql.Tx) error {
		if _, err := tx.Exec(createTablesSQL); err != nil {
			return stepError(ErrSchemaInitFailed, "create_tables", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`,
			SchemaVersion,
		); err != nil {
			return stepError(ErrSchemaInitFailed, "record_version", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("version", SchemaVersion).Msg("Telemetry schema initialized")
	return nil
}

// GetSchemaVersion returns the recorded schema version, or 0 for a fresh
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	exists, err := TableExists(db, "schema_versions")
	if err != nil || !exists {
		return 0, err
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_versions ORDER BY version DESC LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, stepError(ErrSchemaValidationFailed, "get_version", err)
	}

	return version, nil
}

func TableExists(db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`,
		table,
	).Scan(&exists)
	if err != nil {
		return false, pathError(ErrSchemaValidationFailed, "table_exists", table, err)
	}
	return exists, nil
}
