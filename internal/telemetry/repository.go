package telemetry

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db            *sql.DB
	logger        logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []*Snapshot
	sinceFlush    int
	dropped       uint64
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
}

// NewRepository opens (creating if needed) the sqlite database at
// cfg.DBPath and brings its schema up to date. Snapshots are buffered and
// written in batches of cfg.BatchSize, and every cfg.BatchTimeout seconds
// when that is positive. While the database refuses writes at most
// maxPendingBatches batches are held; older snapshots are dropped.
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	if cfg.DBPath == "" {
		return nil, errors.New().New(ErrInvalidDBPath)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, pathError(ErrStorageInit, "create_directory", dir, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_auto_vacuum=2")
	if err != nil {
		return nil, pathError(ErrStorageInit, "open_database", cfg.DBPath, err)
	}

	if err := ValidateAndUpdateSchema(db, filepath.Join(dir, "backups"), log); err != nil {
		db.Close()
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Int("batch_timeout", cfg.BatchTimeout).
		Msg("Telemetry repository initialized")

	repo := &repository{
		db:            db,
		logger:        log,
		cfg:           cfg,
		buffer:        make([]*Snapshot, 0, cfg.BatchSize),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.BatchTimeout > 0 {
		repo.flushTicker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go repo.flusher()
	} else {
		close(repo.flushDoneChan)
	}

	return repo, nil
}

func (r *repository) Record(snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, snapshot)
	if limit := maxPendingBatches * r.cfg.BatchSize; len(r.buffer) > limit {
		n := len(r.buffer) - limit
		r.buffer = append(r.buffer[:0], r.buffer[n:]...)
		r.dropped += uint64(n)
		r.logger.Warn().Uint64("dropped", r.dropped).Msg("Telemetry buffer full, dropping oldest snapshots")
	}

	// At most one flush attempt per BatchSize records.
	r.sinceFlush++
	if r.sinceFlush >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *repository) Close() error {
	var closeErr error

	r.closeOnce.Do(func() {
		close(r.shutdownChan)
		if r.flushTicker != nil {
			r.flushTicker.Stop()
		}
		<-r.flushDoneChan

		r.mu.Lock()
		if err := r.flush(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to flush telemetry on close")
		}
		r.mu.Unlock()

		if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			closeErr = stepError(ErrStorageClose, "checkpoint_wal", err)
			r.db.Close()
			return
		}

		if err := r.db.Close(); err != nil {
			closeErr = stepError(ErrStorageClose, "close_database", err)
			return
		}

		r.logger.Info().Msg("Telemetry repository closed gracefully")
	})

	return closeErr
}

func (r *repository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.logger.Warn().Err(err).Msg("Periodic telemetry flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}

// flush writes the buffered snapshots in one transaction. The caller
// holds r.mu. On failure the buffer is kept for the next attempt.
func (r *repository) flush() error {
	r.sinceFlush = 0
	if len(r.buffer) == 0 {
		return nil
	}

	err := inTx(r.db, ErrTransactionFailed, r.logger, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertHealthSQL)
		if err != nil {
			return stepError(ErrTransactionFailed, "prepare_insert", err)
		}
		defer stmt.Close()

		for _, s := range r.buffer {
			if _, err := stmt.Exec(
				s.Timestamp.UnixMilli(),
				s.SessionID,
				int64(s.Frames.Received),
				int64(s.Frames.Skipped),
				s.Frames.FPSMean,
				s.Frames.FPSStdDev,
				s.Frames.JitterMean.Microseconds(),
				s.Frames.JitterMax.Microseconds(),
				int64(s.Buffer.Samples),
				int64(s.Buffer.Beats),
				s.CycleDuration.Microseconds(),
			); err != nil {
				return stepError(ErrTransactionFailed, "insert_health", err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Int("records", len(r.buffer)).Msg("Failed to flush telemetry")
		return err
	}

	r.logger.Debug().Int("records", len(r.buffer)).Msg("Flushed telemetry to database")
	r.buffer = r.buffer[:0]

	return nil
}
