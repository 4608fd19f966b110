// Command rectable loads record tables from CSV or JSON files described by
// a YAML schema, then validates, shows, exports, indexes or stores them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	// CPCOMMON_* overrides may live in a local .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "rectable",
		Short: "rectable - typed record tables from the command line",
		Long: `rectable reads CSV and JSON files into typed record tables. Every cell is
checked against its column: type, nullability, uniqueness and size.

Columns come from a YAML or JSON schema, or are inferred from a CSV header
and sample rows when no schema is given.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup(cmd.Context()) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.provider, "provider", "", "Record factory provider override")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "rectable v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "providers",
		Short: "List available record factory providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out, "Available Providers:")
			for _, name := range a.registry.Names() {
				marker := ""
				if name == a.cfg.Factory.Provider {
					marker = " (selected)"
				}
				fmt.Fprintf(out, "  - %s%s\n", name, marker)
			}
			return nil
		},
	})

	root.AddCommand(
		newValidateCommand(a),
		newInferCommand(a),
		newShowCommand(a),
		newExportCommand(a),
		newSQLCommand(a),
		newServeCommand(a),
	)
	return root
}
