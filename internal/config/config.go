// Package config loads server settings from flags, overridden by SPARTAN_*
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr          string
	AllowedOrigin string
	Clock         time.Duration
	MatchInterval time.Duration
	// ArchiveDir is where saved games go. Empty disables saving and loading.
	ArchiveDir   string
	ArchiveCodec string
	// Profile is "", "cpu" or "mem".
	Profile    string
	ProfileDir string
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowedOrigin: "http://localhost:5173",
		Clock:         10 * time.Minute,
		MatchInterval: time.Second,
		ArchiveDir:    "archive",
		ArchiveCodec:  "zstd",
		ProfileDir:    ".",
	}
}

// Load parses args (without the program name) and then applies environment
// overrides from getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.AllowedOrigin, "origin", cfg.AllowedOrigin, "allowed CORS and websocket origin")
	fs.DurationVar(&cfg.Clock, "clock", cfg.Clock, "time per side")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", cfg.MatchInterval, "how often the matchmaking queue is drained")
	fs.StringVar(&cfg.ArchiveDir, "archive-dir", cfg.ArchiveDir, "saved game directory, empty to disable")
	fs.StringVar(&cfg.ArchiveCodec, "archive-codec", cfg.ArchiveCodec, "saved game compression: zstd or bzip2")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "cpu or mem profiling")
	fs.StringVar(&cfg.ProfileDir, "profile-dir", cfg.ProfileDir, "where profiles are written")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromOS loads from os.Args and the process environment.
func FromOS() (Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"SPARTAN_ADDR":           &c.Addr,
		"SPARTAN_ALLOWED_ORIGIN": &c.AllowedOrigin,
		"SPARTAN_ARCHIVE_DIR":    &c.ArchiveDir,
		"SPARTAN_ARCHIVE_CODEC":  &c.ArchiveCodec,
		"SPARTAN_PROFILE":        &c.Profile,
	}
	for key, dst := range strs {
		if v, ok := lookup(getenv, key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SPARTAN_CLOCK":          &c.Clock,
		"SPARTAN_MATCH_INTERVAL": &c.MatchInterval,
	}
	for key, dst := range durations {
		v, ok := lookup(getenv, key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		*dst = d
	}
	return nil
}

// lookup treats unset and empty variables alike, except SPARTAN_ARCHIVE_DIR
// where "-" disables the archive.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if key == "SPARTAN_ARCHIVE_DIR" && v == "-" {
		return "", true
	}
	return v, true
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.Clock <= 0 {
		errs = append(errs, fmt.Errorf("clock must be positive, got %s", c.Clock))
	}
	if c.MatchInterval <= 0 {
		errs = append(errs, fmt.Errorf("match interval must be positive, got %s", c.MatchInterval))
	}
	switch c.ArchiveCodec {
	case "zstd", "bzip2":
	default:
		errs = append(errs, fmt.Errorf("unknown archive codec %q", c.ArchiveCodec))
	}
	switch c.Profile {
	case "", "cpu", "mem":
	default:
		errs = append(errs, fmt.Errorf("unknown profile mode %q", c.Profile))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
