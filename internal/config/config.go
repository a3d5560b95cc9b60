package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"node-stats/internal/logs"
	"node-stats/internal/peers"
)

// Config holds the resolved node configuration. Fields tagged env are read
// from the environment by FromEnv.
type Config struct {
	ListenAddr     string        `env:"NODE_STATS_LISTEN_ADDR" envDefault:":8080"`
	NodeID         string        `env:"NODE_STATS_NODE_ID" envDefault:"node-1"`
	Peers          []string      `env:"NODE_STATS_PEERS" envSeparator:","`
	OutputDir      string        `env:"NODE_STATS_OUTPUT_DIR" envDefault:"."`
	ResyncInterval time.Duration `env:"NODE_STATS_RESYNC_INTERVAL" envDefault:"10s"` // 0 disables periodic refresh
	RenderInterval time.Duration `env:"NODE_STATS_RENDER_INTERVAL" envDefault:"250ms"`
	Locale         string        `env:"NODE_STATS_LOCALE" envDefault:"en"`
	LogLevel       logs.Level    `env:"NODE_STATS_LOG_LEVEL" envDefault:"INFO"`
	LogCapacity    int           `env:"NODE_STATS_LOG_CAPACITY" envDefault:"1000"`

	// LockDiagnostics enables lock-order and lock-timeout detection.
	LockDiagnostics bool `env:"NODE_STATS_LOCK_DIAGNOSTICS"`

	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"NODE_STATS_ENV" envDefault:"development"`

	Peer peers.PeerConfig
}

var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError contains details about a configuration validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%d config validation errors: %s", len(e), strings.Join(msgs, "; "))
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	cfg, _ := parse(map[string]string{})
	return cfg
}

// FromEnv reads the variables in environ over the defaults, then validates
// the result. Pass env.ToMap(os.Environ()) for the process environment.
func FromEnv(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	cfg, err := parse(environ)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func parse(environ map[string]string) (Config, error) {
	cfg := Config{Peer: peers.DefaultPeerConfig()}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, parseErrors(err)
	}

	addrs := cfg.Peers[:0]
	for _, p := range cfg.Peers {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, strings.TrimRight(p, "/"))
		}
	}
	cfg.Peers = addrs
	if len(cfg.Peers) == 0 {
		cfg.Peers = nil
	}
	return cfg, nil
}

// parseErrors turns the env package's aggregate error into ValidationErrors,
// one per field that failed to parse.
func parseErrors(err error) ValidationErrors {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return ValidationErrors{{Field: "environment", Message: err.Error()}}
	}

	errs := make(ValidationErrors, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var perr env.ParseError
		if errors.As(e, &perr) {
			errs = append(errs, ValidationError{Field: perr.Name, Message: perr.Err.Error()})
			continue
		}
		errs = append(errs, ValidationError{Field: "environment", Message: e.Error()})
	}
	return errs
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	var errs ValidationErrors

	if c.ListenAddr == "" {
		errs = append(errs, ValidationError{Field: "ListenAddr", Message: "must not be empty"})
	}
	if c.NodeID == "" {
		errs = append(errs, ValidationError{Field: "NodeID", Message: "must not be empty"})
	}
	if c.OutputDir == "" {
		errs = append(errs, ValidationError{Field: "OutputDir", Message: "must not be empty"})
	}
	if c.ResyncInterval < 0 {
		errs = append(errs, ValidationError{Field: "ResyncInterval", Message: "must not be negative"})
	}
	if c.RenderInterval <= 0 {
		errs = append(errs, ValidationError{Field: "RenderInterval", Message: "must be positive"})
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, ValidationError{Field: "Locale", Message: err.Error()})
	}
	if c.LogCapacity < 0 {
		errs = append(errs, ValidationError{Field: "LogCapacity", Message: "must not be negative"})
	}
	if c.Peer.Heartbeat.Interval <= 0 {
		errs = append(errs, ValidationError{Field: "Peer.Heartbeat.Interval", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LanguageTag returns the locale used to format counts.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
