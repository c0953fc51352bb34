package config

import (
	"fmt"
	"log/slog"
	"slices"
)

var (
	validOutputs = []string{"auto", "text", "markdown", "json"}
	validFormats = []string{FormatNative, FormatGlue}
)

// Check reports whether the configuration is valid.
func (c *Config) Check() error {
	if !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output %q (valid: auto, text, markdown, json)", c.OutputFormat)
	}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("invalid format %q (valid: native, glue)", c.Format)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.Profile.SampleRows < 0 {
		return fmt.Errorf("profile.sample_rows must not be negative, got %d", c.Profile.SampleRows)
	}
	if c.Profile.CardinalityLimit <= 0 {
		return fmt.Errorf("profile.cardinality_limit must be positive, got %d", c.Profile.CardinalityLimit)
	}
	if c.Derive.Workers < 0 {
		return fmt.Errorf("derive.workers must not be negative, got %d", c.Derive.Workers)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
