package telemetry

import (
	"context"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopCollector struct{}

func NewService(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If telemetry is disabled, return a no-op collector
	if !cfg.Enabled {
		log.Debug().Msg("Telemetry disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create telemetry repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Bool("enabled", cfg.Enabled).
		Msg("Telemetry service initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(snapshot); err != nil {
			return errFactory.Wrap(ErrRecord, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}

// No-op implementation
func (*noopCollector) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
