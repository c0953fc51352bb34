package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/source"
	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/leapstack-labs/leapdq/internal/watch"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned by validate --fail when any field failed.
var ErrValidationFailed = errors.New("validation failed")

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Specification string
	FromState     string
	Field         string
	Format        string
	Strict        bool
	Fail          bool
	Watch         bool
	Record        bool
	Source        sourceFlags
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [data file]",
		Short: "Check every row of a data file against derived rules",
		Long: `Validate a data file against rule sets.

Rule sets come from --from-state (previously saved with "rules --save"),
from --specification, or from profiling the first rows of the data file
itself. Each failing field is reported on stderr as

  Error in field '<name>'(<index>) on line <row>, content: '<value>'

and records with the wrong number of fields are reported and skipped.
Empty CSV fields are read as null, including quoted empty fields (""),
so a column whose rules include NullPercent rejects both.
The exit status is zero unless --fail is given and a field failed.`,
		Example: `  # Profile the file and check it against itself
  leapdq validate customers.csv

  # Check new data against rules saved earlier
  leapdq rules baseline.csv --save --name customers
  leapdq validate today.csv --from-state customers --fail

  # Also enforce Pattern, Min, Max, Format and BlankPercent
  leapdq validate today.csv --from-state customers --strict

  # Re-validate whenever the file changes
  leapdq validate today.csv --from-state customers --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Specification, "specification", "s", "", "Profile specification file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.FromState, "from-state", "", "Use rule sets saved under this name")
	cmd.Flags().StringVar(&opts.Field, "field", "", "Only check the named field")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Rule output format with --verbose: native, glue")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Also enforce descriptive rules")
	cmd.Flags().BoolVar(&opts.Fail, "fail", false, "Exit non-zero when any field fails")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-validate when the data file changes")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record the run in the state store")
	opts.Source.register(cmd.Flags())

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	srcCfg, err := opts.Source.resolve(args)
	if err != nil {
		return err
	}
	if srcCfg == nil {
		return fmt.Errorf("validate: %w", ErrMissingInput)
	}
	if opts.Watch && srcCfg.Path == "" {
		return errors.New("--watch needs a data file")
	}

	strict := cc.Cfg.Validate.Strict
	if cmd.Flags().Changed("strict") {
		strict = opts.Strict
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = cc.Cfg.Format
	}

	var store *state.SQLiteStore
	if opts.FromState != "" || opts.Record {
		store, err = cc.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	var sets []*rule.RuleSet
	if opts.FromState != "" {
		sets, err = store.LoadRuleSets(ctx, opts.FromState)
		if err != nil {
			return fmt.Errorf("failed to load rule sets %q: %w", opts.FromState, err)
		}
		sets = selectField(sets, opts.Field)
	} else {
		sets, err = cc.deriveRuleSets(ctx, opts.Specification, opts.Field, srcCfg)
		if err != nil {
			return err
		}
	}

	if cc.Cfg.Verbose {
		if err := writeRuleSets(cc.Renderer, sets, format); err != nil {
			return err
		}
	}

	v := &validation{
		cc:     cc,
		src:    *srcCfg,
		sets:   sets,
		field:  opts.Field,
		name:   savedName(opts.FromState, opts.Specification, srcCfg),
		record: opts.Record,
		strict: strict,
		store:  store,
		validator: quality.New(
			quality.WithCatalog(semantic.Builtin()),
			quality.WithStrict(strict),
			quality.WithLogger(cc.Logger),
		),
	}

	report, err := v.run(ctx)
	if err != nil {
		return err
	}
	if err := renderReport(cc.Renderer, report); err != nil {
		return err
	}

	if opts.Watch {
		cc.Logger.Info("watching for changes", "file", srcCfg.Path)
		err := watch.File(ctx, srcCfg.Path, watch.DefaultDebounce, cc.Logger, func() {
			report, err := v.run(ctx)
			if err != nil {
				cc.Logger.Error("validation failed", "file", srcCfg.Path, "error", err)
				return
			}
			_ = renderReport(cc.Renderer, report)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	if opts.Fail && report.Failures > 0 {
		return fmt.Errorf("%w: %d failures in %d rows", ErrValidationFailed, report.Failures, report.Rows)
	}
	return nil
}

func selectField(sets []*rule.RuleSet, field string) []*rule.RuleSet {
	if field == "" {
		return sets
	}
	var out []*rule.RuleSet
	for _, rs := range sets {
		if rs.Name() == field {
			out = append(out, rs)
		}
	}
	return out
}

// validation is one configured scan that can be repeated.
type validation struct {
	cc        *CommandContext
	src       source.Config
	sets      []*rule.RuleSet
	field     string
	name      string
	record    bool
	strict    bool
	store     *state.SQLiteStore
	validator *quality.Validator
}

func (v *validation) run(ctx context.Context) (*quality.Report, error) {
	src, err := source.Open(ctx, v.src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	var run *state.Run
	if v.record && v.store != nil {
		run, err = v.store.CreateRun(ctx, v.name, v.src.Path, v.strict)
		if err != nil {
			return nil, err
		}
	}

	r := v.cc.Renderer
	scanner := &quality.Scanner{
		Validator: v.validator,
		Field:     v.field,
		Logger:    v.cc.Logger,
		OnFailure: func(f quality.Failure) {
			r.Errorf("Error in field '%s'(%d) on line %d, content: '%s'\n", f.Column, f.Index, f.Row, display(f.Value))
			if run != nil {
				if err := v.store.RecordFailure(ctx, run.ID, f); err != nil {
					v.cc.Logger.Warn("failed to record failure", "run", run.ID, "error", err)
				}
			}
		},
		OnRowShape: v.cc.printRowShape,
	}

	report, scanErr := scanner.Scan(ctx, src, v.sets)
	if run != nil {
		if err := v.store.CompleteRun(context.WithoutCancel(ctx), run.ID, report, scanErr); err != nil {
			v.cc.Logger.Warn("failed to complete run", "run", run.ID, "error", err)
		}
	}
	return report, scanErr
}

func display(v core.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.String
}

func renderReport(r *output.Renderer, report *quality.Report) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	r.Header(2, "Validation")
	r.KeyValue("Rows", strconv.Itoa(report.Rows))
	r.KeyValue("Skipped", strconv.Itoa(report.Skipped))
	r.KeyValue("Failures", strconv.Itoa(report.Failures))

	if len(report.PerColumn) == 0 {
		return nil
	}
	columns := make([]string, 0, len(report.PerColumn))
	for name := range report.PerColumn {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	rows := make([][]string, len(columns))
	for i, name := range columns {
		rows[i] = []string{name, strconv.Itoa(report.PerColumn[name])}
	}
	r.Println()
	r.Table([]string{"Column", "Failures"}, rows)
	return nil
}
