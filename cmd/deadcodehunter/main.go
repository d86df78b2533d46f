// Command deadcodehunter shows the documents a language server reports
// errors, warnings and unused declarations for, as a navigable tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/deadcodehunter/fs"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	overrides  Overrides
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "deadcodehunter [dir]",
		Short:        "Browse errors, warnings and dead code reported by a language server",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, args)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", fs.DefaultConfigPath(), "config file")
	flags.StringVar(&opts.overrides.ServerCommand, "server", "", "language server command")
	flags.StringArrayVar(&opts.overrides.ServerArgs, "server-arg", nil, "language server argument (repeatable)")
	flags.StringSliceVar(&opts.overrides.Extensions, "ext", nil, "file extensions to open, e.g. .ts,.tsx")
	flags.IntVar(&opts.overrides.MaxFiles, "max-files", 0, "maximum number of files to open")
	flags.BoolVar(&opts.overrides.NoWatch, "no-watch", false, "do not forward file edits to the server")
	flags.StringVar(&opts.overrides.Editor, "editor", "", "editor command used to open files")
	flags.StringVar(&opts.overrides.LogFile, "log-file", "", `log file ("-" for stderr)`)
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newReportCmd(opts))
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var settle, timeout time.Duration
	cmd := &cobra.Command{
		Use:          "report [dir]",
		Short:        "Print the tree as JSON lines once diagnostics settle",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, args)
			if err != nil {
				return err
			}
			app.Output = cmd.OutOrStdout()
			app.Settle = settle
			app.Timeout = timeout
			return app.Report(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "quiet period after the last diagnostics change")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "maximum time to wait for diagnostics")
	return cmd
}

func (o *rootOptions) app(cmd *cobra.Command, args []string) (*App, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	flags := cmd.Flags()
	ov := o.overrides
	ov.Set = func(name string) bool { return flags.Changed(name) }
	cfg, err := ResolveConfig(o.configPath, ov)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Root: root}, nil
}
