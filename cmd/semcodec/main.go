// Package main provides the semcodec binary entry point.
// Semcodec decodes schema-described YAML and JSON documents into typed
// records and exports them as RDF graphs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/commands"
	"github.com/c360studio/semcodec/config"
	"github.com/c360studio/semcodec/metrics"
	"github.com/c360studio/semcodec/schema"

	// Register vocabularies via init()
	_ "github.com/c360studio/semcodec/vocabulary/dcat"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semcodec"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	env := &commands.Env{
		Out:      stdout,
		Err:      stderr,
		Registry: schema.Global(),
	}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Schema-driven document and graph codec",
		Long: `Semcodec decodes YAML and JSON documents into registered record types
and encodes records back into documents or into RDF graphs.

It provides:
- Type inspection for the registered vocabularies
- Document normalization (defaults filled in, values coerced)
- Graph export as Turtle, N-Triples or JSON-LD
- Publishing graph entities to NATS`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(env, configPath, logLevel, cmd.Flags().Changed("log-level"))
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	commands.Register(cmd, env)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup loads configuration and builds the logger and metrics shared by the
// subcommands. An explicit --log-level beats the configured level.
func setup(env *commands.Env, configPath, logLevel string, levelSet bool) error {
	cfg, err := config.NewLoader(slog.Default()).Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if levelSet {
		cfg.Log.Level = logLevel
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(env.Err, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	env.Logger = logger
	env.Config = cfg
	env.Metrics = metrics.New()
	return nil
}
