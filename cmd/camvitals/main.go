package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/camvitals/internal/capture"
	"codeberg.org/mutker/camvitals/internal/config"
	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/logger"
	"codeberg.org/mutker/camvitals/internal/pid"
	"codeberg.org/mutker/camvitals/internal/session"
	"codeberg.org/mutker/camvitals/internal/sink"
	"codeberg.org/mutker/camvitals/internal/telemetry"
	"github.com/google/uuid"
)

var (
	cfg       *config.Config
	collector telemetry.Collector
	buses     []*sink.Bus
)

func main() {
	var err error
	cfg, err = config.Load(config.WithArgs(os.Args[1:]))
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(cfg.PIDFile); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.FatalWithCode(appErr).Msg("Failed to write PID file")
		}
		logger.Fatal().Err(err).Msg("Failed to write PID file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err = run(ctx)
	cancel()
	cleanup()

	if err != nil {
		logger.ErrorWithCode(errors.Coded(err, errors.ErrMainLoop)).Msg("Error in main loop")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var err error
	collector, err = telemetry.NewService(telemetryConfig(), logger.Default())
	if err != nil {
		return err
	}

	out, err := sinks(ctx)
	if err != nil {
		return err
	}

	source, selector := frameSource()
	monitor := session.NewMonitor(source, out, sessionConfig(),
		session.WithHealthObserver(recordHealth(ctx)))

	if err := monitor.Start(ctx, selector); err != nil {
		return err
	}
	defer monitor.Stop()

	// The synthetic source bounds itself in virtual time.
	if cfg.Duration > 0 && cfg.Source != config.SourceSynthetic {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	logger.Info().
		Str("session_id", monitor.Session().ID).
		Str("source", cfg.Source).
		Msg("Capturing")

	return monitor.Run(ctx)
}

func frameSource() (capture.Source, string) {
	switch cfg.Source {
	case config.SourceRaw:
		return capture.NewRawReader(cfg.Input, cfg.Width, cfg.Height), cfg.Input
	default:
		sc := capture.DefaultSyntheticConfig()
		sc.Width, sc.Height = cfg.Width, cfg.Height
		sc.FPS = cfg.FPS
		sc.HeartRateBPM = cfg.SyntheticBPM
		sc.BreathRPM = cfg.SyntheticBreathRPM
		sc.Noise = cfg.SyntheticNoise
		sc.Duration = cfg.Duration
		sc.Realtime = cfg.Realtime
		return capture.NewSynthetic(sc), config.SourceSynthetic
	}
}

func sessionConfig() session.Config {
	return session.Config{
		WindowSeconds:     cfg.WindowSeconds,
		BeatHorizon:       cfg.BeatHorizon,
		MetricsInterval:   cfg.MetricsInterval,
		RespiratoryCutoff: cfg.RespiratoryCutoff,
		DisplayWidth:      cfg.DisplayWidth,
		DisplayHeight:     cfg.DisplayHeight,
	}
}

func telemetryConfig() telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Enabled = cfg.Telemetry
	tc.DBPath = cfg.TelemetryDB
	return tc
}

// sinks builds the log sink plus one bus per configured transport.
func sinks(ctx context.Context) (sink.Fanout, error) {
	out := sink.Fanout{sink.NewLog(logger.Default())}

	add := func(pub sink.Publisher) {
		bus := sink.NewBus(pub)
		buses = append(buses, bus)
		out = append(out, bus)
		logger.Info().Str("sink", pub.Name()).Msg("Publishing enabled")
	}

	if cfg.NATSURL != "" {
		pub, err := sink.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		add(pub)
	}

	if cfg.MQTTBroker != "" {
		pub, err := sink.ConnectMQTT(cfg.MQTTBroker, "camvitals-"+uuid.NewString(), cfg.MQTTTopic)
		if err != nil {
			return nil, err
		}
		add(pub)
	}

	if cfg.RedisAddr != "" {
		pub, err := sink.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisKey, cfg.RedisTTL)
		if err != nil {
			return nil, err
		}
		add(pub)
	}

	if cfg.WebSocketAddr != "" {
		hub := sink.NewHub()
		if err := hub.Listen(cfg.WebSocketAddr); err != nil {
			return nil, err
		}
		add(hub)
	}

	return out, nil
}

func recordHealth(ctx context.Context) func(session.Health) {
	return func(h session.Health) {
		if err := collector.Record(ctx, healthSnapshot(h)); err != nil {
			logger.Warn().Err(err).Msg("Failed to record telemetry")
		}
	}
}

func healthSnapshot(h session.Health) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp: h.Timestamp,
		SessionID: h.SessionID,
		Frames: telemetry.FrameMetrics{
			Received:   h.Timing.Frames,
			Skipped:    h.Skipped,
			FPSMean:    h.Timing.FPSMean,
			FPSStdDev:  h.Timing.FPSStdDev,
			JitterMean: h.Timing.JitterMean,
			JitterMax:  h.Timing.JitterMax,
		},
		Buffer: telemetry.BufferMetrics{
			Samples: h.Buffered,
			Beats:   h.Beats,
		},
		CycleDuration: h.CycleDuration,
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup() {
	for _, bus := range buses {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close sink")
		}
	}
	if collector != nil {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close telemetry")
		}
	}
	if err := pid.Remove(cfg.PIDFile); err != nil {
		logger.Error().Err(err).Msg("Failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}
