package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/leapstack-labs/leapdq/internal/cli/config"
	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/profiler"
	"github.com/leapstack-labs/leapdq/internal/source"
	"github.com/leapstack-labs/leapdq/internal/specfile"
	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/derive"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrMissingInput is returned when neither a specification nor a data
// source was given.
var ErrMissingInput = errors.New("require either a specification file or a data file")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context for cmd from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// OpenStore opens the state store, creating its directory when needed.
// The caller must close it.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	if c.Cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(c.Cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}

// getConfig returns the current configuration, or the defaults when the
// command runs without the root pre-run hook.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// sourceFlags selects where rows come from.
type sourceFlags struct {
	Type      string
	DSN       string
	Query     string
	Delimiter string
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Type, "source-type", source.TypeCSV, "Row source: csv, duckdb, postgres, sqlite")
	fs.StringVar(&f.DSN, "dsn", "", "Connection string for database sources")
	fs.StringVar(&f.Query, "query", "", "Query selecting the rows for database sources")
	fs.StringVar(&f.Delimiter, "delimiter", "", "CSV field separator (default: sniffed)")
}

// resolve builds a source config from the flags and the optional data
// argument. It returns nil when there is nothing to read.
func (f *sourceFlags) resolve(args []string) (*source.Config, error) {
	cfg := source.Config{Type: f.Type, DSN: f.DSN, Query: f.Query}
	if len(args) > 0 {
		cfg.Path = args[0]
	}

	switch f.Delimiter {
	case "":
	case `\t`, "tab":
		cfg.Delimiter = '\t'
	default:
		if utf8.RuneCountInString(f.Delimiter) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", f.Delimiter)
		}
		cfg.Delimiter, _ = utf8.DecodeRuneInString(f.Delimiter)
	}

	if cfg.Path == "" && cfg.DSN == "" && cfg.Query == "" {
		return nil, nil
	}
	if (cfg.Type == "" || cfg.Type == source.TypeCSV) && cfg.Path == "" {
		return nil, ErrMissingInput
	}
	return &cfg, nil
}

// profileSource profiles the leading sample of src.
func (c *CommandContext) profileSource(ctx context.Context, srcCfg source.Config) ([]core.ColumnProfile, error) {
	src, err := source.Open(ctx, srcCfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	factory := profiler.NewFactory(
		profiler.WithCardinalityLimit(c.Cfg.Profile.CardinalityLimit),
		profiler.WithCatalog(semantic.Builtin()),
	)
	return profiler.Run(ctx, src, c.Cfg.Profile.SampleRows, factory, c.Logger,
		profiler.WithRowShape(c.printRowShape))
}

// printRowShape reports a record skipped for having the wrong number of
// fields on the diagnostic stream.
func (c *CommandContext) printRowShape(e *quality.RowShapeError) {
	c.Renderer.Errorf("ERROR: Record %d has %d fields, expected %d, skipping\n", e.Row, e.Fields, e.Expected)
}

// deriveRuleSets produces rule sets from a specification file when one is
// given, otherwise from a sample of the data source.
func (c *CommandContext) deriveRuleSets(ctx context.Context, specification, field string, srcCfg *source.Config) ([]*rule.RuleSet, error) {
	var (
		profiles []core.ColumnProfile
		err      error
	)
	switch {
	case specification != "":
		profiles, err = specfile.Load(specification, c.Logger)
	case srcCfg != nil:
		profiles, err = c.profileSource(ctx, *srcCfg)
	default:
		return nil, ErrMissingInput
	}
	if err != nil {
		return nil, err
	}

	c.Logger.Debug("deriving rule sets", "columns", len(profiles), "field", field)
	return derive.All(ctx, profiles, derive.WithField(field), derive.WithWorkers(c.Cfg.Derive.Workers))
}

// writeRuleSets writes sets in the requested format. Empty sets are omitted.
func writeRuleSets(r *output.Renderer, sets []*rule.RuleSet, format string) error {
	switch format {
	case config.FormatGlue:
		return rule.EncodeExpressions(r.ErrWriter(), sets)
	case config.FormatNative, "":
		return rule.EncodeJSON(r.ErrWriter(), sets)
	default:
		return fmt.Errorf("unknown format %q (valid: native, glue)", format)
	}
}

// savedName picks the key rule sets and runs are stored under.
func savedName(explicit, specification string, srcCfg *source.Config) string {
	switch {
	case explicit != "":
		return explicit
	case srcCfg != nil:
		return srcCfg.Name()
	default:
		return specification
	}
}
