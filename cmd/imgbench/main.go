// Command imgbench is an interactive and scriptable image processing
// workbench.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/imgbench/pkg/cli"
	"github.com/Fepozopo/imgbench/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "imgbench: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "imgbench [image]",
		Short:         "Image processing workbench with a linear history",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(envFiles...)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return cli.RunCLI(cmd.Context(), cfg, path)
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(
		&cobra.Command{
			Use:   "repl [image]",
			Short: "Start an interactive session",
			Args:  cobra.MaximumNArgs(1),
			RunE:  root.RunE,
		},
		&cobra.Command{
			Use:   "run <script>",
			Short: "Execute a command script, stopping at the first error",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.RunScriptFile(cmd.Context(), cfg, args[0])
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				v, err := cli.ParseVersion()
				if err != nil {
					return fmt.Errorf("build version %q is not semver: %w", cli.Version, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "update",
			Short: "Check for a newer release and install it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				h := cli.NewHost(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
				defer h.Close()
				return h.Session.Exec(cmd.Context(), "update")
			},
		},
	)
	return root
}
