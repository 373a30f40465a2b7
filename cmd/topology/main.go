// Package main provides the topology CLI: an interactive terminal viewer for
// the book/author graph plus one-shot commands against the same backend.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/client"
	"github.com/dd0wney/cluso-topology/pkg/config"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
)

// Version is set at build time via ldflags
var Version = "dev"

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitConfigError = 2
	ExitBackendDown = 3
)

var (
	configPath string
	envFiles   []string
	apiURL     string
	logLevel   string
	jsonOutput bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		bad.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "topology",
	Short: "Explore the book and author graph",
	Long: `topology renders the literature knowledge graph (books, authors, eras,
movements, characters and plots) as a 3D force layout in the terminal, and
offers one-shot commands to search, inspect and edit the graph.

Configuration is read from --config (YAML or TOML), .env files and the
TOPOLOGY_* environment variables, in that order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// configError marks failures that should exit with ExitConfigError.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return configError{err}
	}
	c, err := config.Load(configPath)
	if err != nil {
		return configError{err}
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return configError{err}
	}
	cfg = c
	return nil
}

func exitCode(err error) int {
	var ce configError
	switch {
	case errors.As(err, &ce):
		return ExitConfigError
	case errors.Is(err, client.ErrUnavailable):
		return ExitBackendDown
	default:
		return ExitError
	}
}

// newLogger builds the logger for one-shot commands. Logs go to stderr so
// stdout stays parseable.
func newLogger() logging.Logger {
	return logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
}

// newTUILogger logs to cfg.Log.File, or nowhere, since the alt screen owns
// the terminal.
func newTUILogger() (logging.Logger, io.Closer, error) {
	if cfg.Log.File == "" {
		return logging.NewNopLogger(), io.NopCloser(nil), nil
	}
	return logging.NewFileLogger(cfg.Log.File, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
}

// newRegistry returns a metrics registry when a diagnostics address is
// configured, nil otherwise.
func newRegistry() *metrics.Registry {
	if cfg.Metrics.Addr == "" {
		return nil
	}
	return metrics.NewRegistry()
}

func newClient(logger logging.Logger, reg *metrics.Registry) *client.Client {
	opts := append(cfg.ClientOptions(), client.WithLogger(logger), client.WithMetrics(reg))
	return client.New(cfg.API.BaseURL, opts...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
