package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	SessionSecret     string        `mapstructure:"session_secret" yaml:"session_secret"`

	// MatchFallbackDelay is how long a topic-restricted match request
	// stays topic-only before it becomes matchable by any peer.
	MatchFallbackDelay time.Duration `mapstructure:"match_fallback_delay" yaml:"match_fallback_delay"`
	// MatchWaitTimeout is the overall deadline after which an unmatched
	// request is abandoned and the client notified.
	MatchWaitTimeout time.Duration `mapstructure:"match_wait_timeout" yaml:"match_wait_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		MatchFallbackDelay: 15 * time.Second,
		MatchWaitTimeout:   30 * time.Second,
	}
}
