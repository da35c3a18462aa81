package config

// Option adjusts how Load finds and reads configuration.
type Option func(*options) error

type options struct {
	configPath string
	envPrefix  string
	args       []string
}

// WithConfigFile reads path instead of CAMVITALS_CONFIG or
// /etc/camvitals.toml. A missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &fieldError{field: "config", value: path, reason: "path is empty"}
		}
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix replaces the CAMVITALS environment prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		if prefix == "" {
			return &fieldError{field: "env_prefix", value: prefix, reason: "prefix is empty"}
		}
		o.envPrefix = prefix
		return nil
	}
}

// WithArgs hands command line arguments (without the program name) to
// Load. Without it no flags are parsed.
func WithArgs(args []string) Option {
	return func(o *options) error {
		o.args = args
		return nil
	}
}

type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	return l == LogLevelDebug || l == LogLevelInfo || l == LogLevelWarning || l == LogLevelError
}

func (l LogLevel) String() string {
	return string(l)
}

// ValidationError is carried by every error Validate returns and names the
// offending key.
type ValidationError interface {
	error
	Field() string
	Value() any
	Reason() string
}
