// Package config provides the configuration structure for the lipsync-service.
package config

import (
	"errors"
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/lipsync-service/internal/timeline"
	"github.com/book-expert/logger"
)

const (
	defaultTimelineFormat = string(timeline.FormatJSON)
	defaultMetricsAddr    = ":9464"
)

var (
	// ErrNATSURLEmpty indicates that no NATS server was configured.
	ErrNATSURLEmpty = errors.New("nats url cannot be empty")
	// ErrSubjectEmpty indicates that the input subject is missing.
	ErrSubjectEmpty = errors.New("text processed subject cannot be empty")
	// ErrBucketEmpty indicates that an object store bucket name is missing.
	ErrBucketEmpty = errors.New("object store bucket cannot be empty")
	// ErrMsPerUnitRange indicates a non-positive time scale.
	ErrMsPerUnitRange = errors.New("ms_per_unit must be positive")
	// ErrSilenceUnitsRange indicates a negative silence pad.
	ErrSilenceUnitsRange = errors.New("silence_units must be non-negative")
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                    string `toml:"url"`
	TextProcessedSubject   string `toml:"text_processed_subject"`
	TimelineCreatedSubject string `toml:"timeline_created_subject"`
	TextObjectStoreBucket  string `toml:"text_object_store_bucket"`
	// TimelineObjectStoreBucket defaults to the text bucket when empty.
	TimelineObjectStoreBucket string `toml:"timeline_object_store_bucket"`
}

// LipsyncConfig holds the conversion and output settings.
type LipsyncConfig struct {
	MsPerUnit      float64 `toml:"ms_per_unit"`
	TimelineFormat string  `toml:"timeline_format"`
	PadSilence     bool    `toml:"pad_silence"`
	SilenceUnits   float64 `toml:"silence_units"`
	MetricsAddr    string  `toml:"metrics_addr"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS    NATSConfig    `toml:"nats"`
	Lipsync LipsyncConfig `toml:"lipsync"`
	Paths   PathsConfig   `toml:"paths"`
}

// Load loads the configuration for the lipsync-service, fills defaults and
// validates the result.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills optional settings that were left empty.
func (c *Config) ApplyDefaults() {
	if c.NATS.TimelineObjectStoreBucket == "" {
		c.NATS.TimelineObjectStoreBucket = c.NATS.TextObjectStoreBucket
	}

	if c.Lipsync.MsPerUnit == 0 {
		c.Lipsync.MsPerUnit = timeline.DefaultMsPerUnit
	}

	if c.Lipsync.TimelineFormat == "" {
		c.Lipsync.TimelineFormat = defaultTimelineFormat
	}

	if c.Lipsync.PadSilence && c.Lipsync.SilenceUnits == 0 {
		c.Lipsync.SilenceUnits = timeline.DefaultSilenceUnits
	}

	if c.Lipsync.MetricsAddr == "" {
		c.Lipsync.MetricsAddr = defaultMetricsAddr
	}
}

// Validate checks that the configuration can run the service.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return ErrNATSURLEmpty
	}

	if c.NATS.TextProcessedSubject == "" {
		return ErrSubjectEmpty
	}

	if c.NATS.TextObjectStoreBucket == "" || c.NATS.TimelineObjectStoreBucket == "" {
		return ErrBucketEmpty
	}

	if c.Lipsync.MsPerUnit <= 0 {
		return fmt.Errorf("%w: got %f", ErrMsPerUnitRange, c.Lipsync.MsPerUnit)
	}

	if c.Lipsync.SilenceUnits < 0 {
		return fmt.Errorf("%w: got %f", ErrSilenceUnitsRange, c.Lipsync.SilenceUnits)
	}

	_, err := timeline.ParseFormat(c.Lipsync.TimelineFormat)
	if err != nil {
		return fmt.Errorf("invalid timeline_format: %w", err)
	}

	return nil
}

// TimelineOptions converts the lipsync section into timeline build options.
func (c *Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		MsPerUnit:    c.Lipsync.MsPerUnit,
		PadSilence:   c.Lipsync.PadSilence,
		SilenceUnits: c.Lipsync.SilenceUnits,
	}
}

// Format returns the parsed timeline format. Call Validate first.
func (c *Config) Format() timeline.Format {
	format, err := timeline.ParseFormat(c.Lipsync.TimelineFormat)
	if err != nil {
		return timeline.FormatJSON
	}

	return format
}
