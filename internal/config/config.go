package config

import (
	"os"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = "info"
	DefaultSource    = SourceSynthetic
	DefaultEnvPrefix = "CAMVITALS"
	DefaultPIDFile   = "camvitals.pid"
	configEnvVar     = "CAMVITALS_CONFIG"

	SourceSynthetic = "synthetic"
	SourceRaw       = "raw"
)

// ErrHelp is returned by Load when --help was requested. The usage text
// has already been printed.
var ErrHelp = pflag.ErrHelp

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Frame source
	Source        string        `mapstructure:"source"`
	Input         string        `mapstructure:"input"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	DisplayWidth  float64       `mapstructure:"display_width"`
	DisplayHeight float64       `mapstructure:"display_height"`
	FPS           float64       `mapstructure:"fps"`
	Duration      time.Duration `mapstructure:"duration"`
	Realtime      bool          `mapstructure:"realtime"`

	SyntheticBPM       float64 `mapstructure:"synthetic_bpm"`
	SyntheticBreathRPM float64 `mapstructure:"synthetic_breath_rpm"`
	SyntheticNoise     float64 `mapstructure:"synthetic_noise"`

	// Pipeline
	WindowSeconds     float64 `mapstructure:"window_seconds"`
	BeatHorizon       float64 `mapstructure:"beat_horizon"`
	MetricsInterval   float64 `mapstructure:"metrics_interval"`
	RespiratoryCutoff float64 `mapstructure:"respiratory_cutoff"`

	// Telemetry
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"telemetry_db"`

	// Sinks
	NATSURL       string        `mapstructure:"nats_url"`
	NATSSubject   string        `mapstructure:"nats_subject"`
	MQTTBroker    string        `mapstructure:"mqtt_broker"`
	MQTTTopic     string        `mapstructure:"mqtt_topic"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisKey      string        `mapstructure:"redis_key"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	WebSocketAddr string        `mapstructure:"websocket_addr"`

	PIDFile string `mapstructure:"pid_file"`
}

var defaults = map[string]any{
	"log_level":            DefaultLogLevel,
	"source":               DefaultSource,
	"input":                "-",
	"width":                640,
	"height":               480,
	"display_width":        0.0,
	"display_height":       0.0,
	"fps":                  30.0,
	"duration":             time.Duration(0),
	"realtime":             false,
	"synthetic_bpm":        72.0,
	"synthetic_breath_rpm": 15.0,
	"synthetic_noise":      0.3,
	"window_seconds":       25.0,
	"beat_horizon":         18.0,
	"metrics_interval":     0.3,
	"respiratory_cutoff":   0.33,
	"telemetry":            false,
	"telemetry_db":         "/var/lib/camvitals/telemetry.db",
	"nats_url":             "",
	"nats_subject":         "camvitals",
	"mqtt_broker":          "",
	"mqtt_topic":           "camvitals",
	"redis_addr":           "",
	"redis_key":            "camvitals",
	"redis_ttl":            10 * time.Second,
	"websocket_addr":       "",
	"pid_file":             "",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("camvitals", pflag.ContinueOnError)

	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("config", "", "Path to a TOML config file")
	fs.String("source", DefaultSource, "Frame source (synthetic, raw)")
	fs.String("input", "-", "Raw RGBA input file, - for stdin")
	fs.Int("width", 640, "Native frame width in pixels")
	fs.Int("height", 480, "Native frame height in pixels")
	fs.Float64("display-width", 0, "Display width the ROI is defined against (0 = native)")
	fs.Float64("display-height", 0, "Display height the ROI is defined against (0 = native)")
	fs.Float64("fps", 30, "Synthetic source frame rate")
	fs.Duration("duration", 0, "Stop after this much capture time (0 = until interrupted)")
	fs.Bool("realtime", false, "Pace the synthetic source against the wall clock")
	fs.Float64("synthetic-bpm", 72, "Synthetic pulse rate")
	fs.Float64("synthetic-breath-rpm", 15, "Synthetic breathing rate")
	fs.Float64("synthetic-noise", 0.3, "Synthetic noise standard deviation")
	fs.Float64("window-seconds", 25, "Sample window span in seconds (20-25)")
	fs.Float64("beat-horizon", 18, "Beat retention horizon in seconds (15-18)")
	fs.Float64("metrics-interval", 0.3, "Seconds between metrics cycles (0.25-0.3)")
	fs.Float64("respiratory-cutoff", 0.33, "Respiratory lowpass corner in Hz")
	fs.Bool("telemetry", false, "Record pipeline health to sqlite")
	fs.String("telemetry-db", "/var/lib/camvitals/telemetry.db", "Telemetry database path")
	fs.String("nats-url", "", "Publish to this NATS server")
	fs.String("nats-subject", "camvitals", "NATS subject prefix")
	fs.String("mqtt-broker", "", "Publish to this MQTT broker")
	fs.String("mqtt-topic", "camvitals", "MQTT topic prefix")
	fs.String("redis-addr", "", "Store the latest snapshot in this Redis server")
	fs.String("redis-key", "camvitals", "Redis key prefix")
	fs.Duration("redis-ttl", 10*time.Second, "Expiry of the stored snapshot")
	fs.String("websocket-addr", "", "Serve snapshots to WebSocket clients on this address")
	fs.String("pid-file", "", "PID file path (default in the temp dir)")

	return fs
}

// Load reads configuration from defaults, the TOML config file, the
// environment and command line flags, in increasing precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fs := newFlagSet()
	if err := fs.Parse(o.args); err != nil {
		if err == pflag.ErrHelp {
			return nil, ErrHelp
		}
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := v.BindPFlag(flagKey(f.Name), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.AutomaticEnv()

	if err := readConfigFile(v, configPath(o, fs)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configPath(o *options, fs *pflag.FlagSet) string {
	if path, _ := fs.GetString("config"); path != "" {
		return path
	}
	if o.configPath != "" {
		return o.configPath
	}
	return os.Getenv(configEnvVar)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName("camvitals")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}
	return nil
}

func flagKey(name string) string {
	key := []byte(name)
	for i, c := range key {
		if c == '-' {
			key[i] = '_'
		}
	}
	return string(key)
}
