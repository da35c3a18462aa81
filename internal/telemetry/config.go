package telemetry

import "codeberg.org/mutker/camvitals/internal/errors"

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/camvitals/telemetry.db"
	defaultBatchSize    = 50
	defaultBatchTimeout = 5

	// maxPendingBatches bounds the unflushed buffer when writes fail.
	maxPendingBatches = 4
)

type Config struct {
	DBPath  string
	Enabled bool
	// BatchSize is the number of buffered snapshots that forces a flush.
	BatchSize int
	// BatchTimeout is the periodic flush interval in seconds. Zero disables
	// the background flusher.
	BatchTimeout int
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		Enabled:      false, // Disabled by default
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if telemetry is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout int
		}{c.BatchSize, c.BatchTimeout})
	}
	return nil
}
