package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapdq/internal/server"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/semantic"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port   int
	Strict bool
	Watch  bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve <name>",
		Short: "Serve saved rule sets over HTTP",
		Long: `Start an HTTP server that checks values against the rule sets saved
under <name> with "rules --save".

Endpoints:
  GET  /healthz
  GET  /rulesets
  POST /rulesets/check              {"values": {"age": "42"}}
  GET  /rulesets/{column}
  GET  /rulesets/{column}/expression
  POST /rulesets/{column}/check     {"value": "42"}
  GET  /sources
  GET  /runs
  GET  /runs/{id}/failures`,
		Example: `  leapdq rules customers.csv --save --name customers
  leapdq serve customers --port 8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			port := cc.Cfg.Server.Port
			if opts.Port != 0 {
				port = opts.Port
			}
			strict := cc.Cfg.Validate.Strict
			if cmd.Flags().Changed("strict") {
				strict = opts.Strict
			}

			store, err := cc.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg := server.Config{
				Store: store,
				Validator: quality.New(
					quality.WithCatalog(semantic.Builtin()),
					quality.WithStrict(strict),
					quality.WithLogger(cc.Logger),
				),
				Source: args[0],
				Port:   port,
				Logger: cc.Logger,
			}
			if opts.Watch {
				cfg.WatchPath = store.Path()
			}

			srv := server.New(cfg)
			if err := srv.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load rule sets %q: %w", args[0], err)
			}

			cc.Renderer.Printf("Serving rule sets %q on http://localhost:%d\n", args[0], port)
			cc.Renderer.Muted("Press Ctrl+C to stop")
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default from config)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Also enforce descriptive rules")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload rule sets when the state database changes")
	return cmd
}
