package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Specification string
	Field         string
	Format        string
	Save          bool
	Name          string
	Source        sourceFlags
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [data file]",
		Short: "Derive data-quality rules",
		Long: `Derive one rule set per column and print them to stderr.

Rules come from a profile specification (--specification) or, failing that,
from profiling the first rows of the data file. Columns whose rule set is
empty are not printed.

Formats:
  native  one JSON object per column
  glue    a "Rules = [ ... ]" list of constraint expressions`,
		Example: `  # Derive rules from the first rows of a CSV file
  leapdq rules customers.csv

  # Derive rules from a profile specification, in expression form
  leapdq rules --specification profile.json --format glue

  # Only the age column, saved for later validation
  leapdq rules customers.csv --field age --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Specification, "specification", "s", "", "Profile specification file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Field, "field", "", "Only process the named field")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Rule output format: native, glue (default from config)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Persist the rule sets in the state store")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Name to save the rule sets under (default: the data source)")
	opts.Source.register(cmd.Flags())

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"native", "glue"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRules(cmd *cobra.Command, args []string, opts *RulesOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = cc.Cfg.Format
	}

	srcCfg, err := opts.Source.resolve(args)
	if err != nil {
		return err
	}

	sets, err := cc.deriveRuleSets(ctx, opts.Specification, opts.Field, srcCfg)
	if err != nil {
		return err
	}

	if err := writeRuleSets(cc.Renderer, sets, format); err != nil {
		return err
	}

	if !opts.Save {
		return nil
	}

	name := savedName(opts.Name, opts.Specification, srcCfg)
	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveRuleSets(ctx, name, sets); err != nil {
		return err
	}
	cc.Renderer.Success(fmt.Sprintf("Saved %d rule sets as %q", len(sets), name))
	return nil
}
