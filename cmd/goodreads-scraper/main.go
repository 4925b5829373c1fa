// Command goodreads-scraper extracts structured book records from Goodreads
// pages. Payloads go to stdout; logs and summaries go to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/goodreads-scraper/config"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := envDefaults()
	if err != nil {
		return err
	}
	return newRootCmd(cfg).ExecuteContext(ctx)
}

// envDefaults resolves the configuration the flags will default to:
// environment variables override the built-in defaults, flags override both.
func envDefaults() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if v, ok := config.EnvString("GOODREADS_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok, err := config.EnvInt("GOODREADS_PARALLEL"); err != nil {
		return nil, err
	} else if ok {
		cfg.Parallelism = v
	}
	if v, ok, err := config.EnvDuration("GOODREADS_TIMEOUT"); err != nil {
		return nil, err
	} else if ok {
		cfg.Timeout = v
	}
	if v, ok, err := config.EnvDuration("GOODREADS_DELAY"); err != nil {
		return nil, err
	} else if ok {
		cfg.Delay = v
	}
	if v, ok := config.EnvString("GOODREADS_OUTPUT"); ok {
		cfg.OutputFile = v
	}
	if v, ok := config.EnvString("GOODREADS_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := config.EnvString("GOODREADS_USER_AGENT"); ok {
		cfg.UserAgent = v
	}
	if v, ok, err := config.EnvBool("GOODREADS_VERBOSE"); err != nil {
		return nil, err
	} else if ok {
		cfg.Verbose = v
	}
	return cfg, nil
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "goodreads-scraper",
		Short:         "Extract structured book records from Goodreads pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, level := newLogger(cfg.Verbose)
			slog.SetDefault(logger)
			slog.SetLogLoggerLevel(level.Level())

			cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL of the catalog site")
	flags.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Concurrent fetch workers")
	flags.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Fixed delay between requests")
	flags.DurationVar(&cfg.RandomDelay, "random-delay", cfg.RandomDelay, "Random jitter added to the delay")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flags.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Maximum retry attempts per URL")
	flags.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Initial retry backoff")
	flags.DurationVar(&cfg.RetryBackoffMax, "retry-backoff-max", cfg.RetryBackoffMax, "Maximum retry backoff")
	flags.BoolVar(&cfg.RespectRobotsTxt, "respect-robots", cfg.RespectRobotsTxt, "Respect robots.txt directives")
	flags.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User agent header")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable verbose logging")

	cmd.AddCommand(newBookCmd(cfg), newSearchCmd(cfg), newExportCmd(cfg))
	return cmd
}

// printJSON writes the payload pretty-printed with two-space indentation.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
