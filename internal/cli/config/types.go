// Package config provides configuration management for the leapdq CLI.
//
// Values are layered with koanf: built-in defaults, then the project file
// (leapdq.yaml), then LEAPDQ_* environment variables, then flags that were
// set explicitly on the command line.
package config

// Default configuration values.
const (
	DefaultStateFile        = ".leapdq/state.db"
	DefaultOutput           = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultFormat           = "native"
	DefaultLogLevel         = "warn"
	DefaultSampleRows       = 100
	DefaultCardinalityLimit = 100
	DefaultServerPort       = 8766
)

// Rule output formats.
const (
	FormatNative = "native"
	FormatGlue   = "glue"
)

// ProfileConfig controls the built-in profiler used when rules are derived
// from a data file rather than a specification.
type ProfileConfig struct {
	SampleRows       int `koanf:"sample_rows"`
	CardinalityLimit int `koanf:"cardinality_limit"`
}

// ValidateConfig holds defaults for the validate command.
type ValidateConfig struct {
	Strict bool `koanf:"strict"`
}

// DeriveConfig holds rule derivation settings.
type DeriveConfig struct {
	// Workers bounds concurrent derivation. Zero uses GOMAXPROCS.
	Workers int `koanf:"workers"`
}

// ServerConfig holds configuration for the rule server.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string         `koanf:"state_path"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`
	LogLevel     string         `koanf:"log_level"`
	Format       string         `koanf:"format"`
	Profile      ProfileConfig  `koanf:"profile"`
	Validate     ValidateConfig `koanf:"validate"`
	Derive       DeriveConfig   `koanf:"derive"`
	Server       ServerConfig   `koanf:"server"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Format:       DefaultFormat,
		Profile: ProfileConfig{
			SampleRows:       DefaultSampleRows,
			CardinalityLimit: DefaultCardinalityLimit,
		},
		Server: ServerConfig{Port: DefaultServerPort},
	}
}
