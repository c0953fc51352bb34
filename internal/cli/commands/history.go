package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded validation runs",
		Long: `List validation runs recorded with "validate --record", newest first.
Pass a run ID to show that run's failures.`,
		Example: `  leapdq history
  leapdq history --limit 5 -o json
  leapdq history 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			store, err := cc.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				return showRun(cmd, cc, store, args[0], opts.Limit)
			}
			return listRuns(cmd, cc, store, opts.Limit)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of rows to show (0 for all)")
	return cmd
}

func listRuns(cmd *cobra.Command, cc *CommandContext, store *state.SQLiteStore, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	if len(runs) == 0 {
		r.Muted("No validation runs recorded.")
		return nil
	}

	title := cases.Title(language.English)
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			run.ID,
			run.Source,
			title.String(string(run.Status)),
			run.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(run.Rows),
			strconv.Itoa(run.Failures),
		}
	}
	r.Header(2, "Validation runs")
	r.Table([]string{"ID", "Source", "Status", "Started", "Rows", "Failures"}, rows)
	return nil
}

func showRun(cmd *cobra.Command, cc *CommandContext, store *state.SQLiteStore, id string, limit int) error {
	ctx := cmd.Context()
	run, err := store.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("run %q: %w", id, err)
	}
	failures, err := store.RunFailures(ctx, id, limit)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if failures == nil {
			failures = []state.FailureRecord{}
		}
		return r.JSON(struct {
			*state.Run
			FailureDetail []state.FailureRecord `json:"failure_detail"`
		}{run, failures})
	}

	r.Header(2, "Run "+run.ID)
	r.KeyValue("Source", run.Source)
	if run.File != "" {
		r.KeyValue("File", run.File)
	}
	r.KeyValue("Status", cases.Title(language.English).String(string(run.Status)))
	r.KeyValue("Strict", strconv.FormatBool(run.Strict))
	r.KeyValue("Rows", strconv.Itoa(run.Rows))
	r.KeyValue("Skipped", strconv.Itoa(run.Skipped))
	r.KeyValue("Failures", strconv.Itoa(run.Failures))
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}

	if len(failures) == 0 {
		return nil
	}
	rows := make([][]string, len(failures))
	for i, f := range failures {
		value := "null"
		if f.Value != nil {
			value = *f.Value
		}
		rows[i] = []string{strconv.Itoa(f.Row), f.Column, value, f.Rule, f.Reason}
	}
	r.Println()
	r.Table([]string{"Line", "Field", "Content", "Rule", "Reason"}, rows)
	return nil
}
