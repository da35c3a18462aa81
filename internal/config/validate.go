package config

import (
	"fmt"

	"codeberg.org/mutker/camvitals/internal/errors"
)

type fieldError struct {
	field  string
	value  any
	reason string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.field, e.value, e.reason)
}

func (e *fieldError) Field() string  { return e.field }
func (e *fieldError) Value() any     { return e.value }
func (e *fieldError) Reason() string { return e.reason }

func invalid(field string, value any, reason string) error {
	return errors.New().Wrap(errors.ErrInvalidConfig, &fieldError{field: field, value: value, reason: reason})
}

// Validate checks the loaded values. The returned error carries a
// ValidationError describing the first offending field.
func (c *Config) Validate() error {
	if !LogLevel(c.LogLevel).IsValid() {
		return errors.New().Wrap(errors.ErrInvalidLogLevel,
			&fieldError{field: "log_level", value: c.LogLevel, reason: "must be debug, info, warning or error"})
	}

	switch c.Source {
	case SourceSynthetic:
		if c.FPS <= 0 {
			return invalid("fps", c.FPS, "must be positive")
		}
		if c.SyntheticBPM <= 0 {
			return invalid("synthetic_bpm", c.SyntheticBPM, "must be positive")
		}
		if c.SyntheticBreathRPM <= 0 {
			return invalid("synthetic_breath_rpm", c.SyntheticBreathRPM, "must be positive")
		}
		if c.SyntheticNoise < 0 {
			return invalid("synthetic_noise", c.SyntheticNoise, "must not be negative")
		}
	case SourceRaw:
	default:
		return invalid("source", c.Source, "must be synthetic or raw")
	}

	if c.Width <= 0 || c.Height <= 0 {
		return invalid("width", fmt.Sprintf("%dx%d", c.Width, c.Height), "frame size must be positive")
	}
	if c.DisplayWidth < 0 || c.DisplayHeight < 0 {
		return invalid("display_width", fmt.Sprintf("%gx%g", c.DisplayWidth, c.DisplayHeight), "display size must not be negative")
	}
	if c.Duration < 0 {
		return invalid("duration", c.Duration, "must not be negative")
	}

	if c.WindowSeconds < 20 || c.WindowSeconds > 25 {
		return invalid("window_seconds", c.WindowSeconds, "must be between 20 and 25")
	}
	if c.BeatHorizon < 15 || c.BeatHorizon > 18 {
		return invalid("beat_horizon", c.BeatHorizon, "must be between 15 and 18")
	}
	if c.MetricsInterval < 0.25 || c.MetricsInterval > 0.3 {
		return errors.New().Wrap(errors.ErrInvalidInterval,
			&fieldError{field: "metrics_interval", value: c.MetricsInterval, reason: "must be between 0.25 and 0.3"})
	}
	if c.RespiratoryCutoff <= 0 || c.RespiratoryCutoff >= 1 {
		return invalid("respiratory_cutoff", c.RespiratoryCutoff, "must be between 0 and 1 Hz")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return invalid("telemetry_db", c.TelemetryDB, "required when telemetry is enabled")
	}
	if c.RedisAddr != "" && c.RedisTTL <= 0 {
		return invalid("redis_ttl", c.RedisTTL, "must be positive")
	}

	return nil
}
