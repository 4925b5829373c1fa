package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/goodreads-scraper/config"
	"github.com/aluiziolira/goodreads-scraper/models"
	"github.com/aluiziolira/goodreads-scraper/pipeline"
	"github.com/aluiziolira/goodreads-scraper/scraper"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var (
		idsArg  string
		idsFile string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch many books and write their records to CSV or JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveIDs(idsArg, idsFile)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg, ids)
		},
	}
	cmd.Flags().StringVar(&idsArg, "ids", "", "Comma-separated book ids to export")
	cmd.Flags().StringVar(&idsFile, "ids-file", "", "File with one book id per line")
	cmd.Flags().StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Output file path")
	cmd.Flags().StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: csv, json, or dual")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	return cmd
}

// resolveIDs merges the two id sources. Lines starting with # in the ids
// file are comments.
func resolveIDs(idsArg, idsFile string) ([]string, error) {
	var ids []string
	if idsArg != "" {
		for _, id := range strings.Split(idsArg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if idsFile != "" {
		data, err := os.ReadFile(idsFile)
		if err != nil {
			return nil, fmt.Errorf("read ids file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ids = append(ids, line)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no book ids given: use --ids or --ids-file")
	}
	return ids, nil
}

func runExport(ctx context.Context, cfg *config.Config, ids []string) error {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p, err := pipeline.NewPipeline(ctx, writer, cfg)
	if err != nil {
		return fmt.Errorf("initialising pipeline: %w", err)
	}
	p.Start(cfg.Parallelism)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	slog.Info("starting export",
		slog.Int("books", len(ids)),
		slog.Int("workers", cfg.Parallelism),
	)

	startTime := time.Now()
	result, runErr := s.Export(ctx, ids, p)

	if err := p.Close(); err != nil {
		return fmt.Errorf("pipeline shutdown: %w", err)
	}
	s.Wait()

	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation: %w", err)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(os.Stderr, result, time.Since(startTime), cfg.OutputFile, p.GetMetrics())
	return runErr
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".json"
		return pipeline.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printSummary(w io.Writer, result *models.ExportResult, duration time.Duration, outputFile string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Export complete")

	totalRecords := int64(0)
	if processed, ok := metrics["processed_records"].(int64); ok {
		totalRecords = processed
	}
	recordsPerSec := 0.0
	if duration.Seconds() > 0 {
		recordsPerSec = float64(totalRecords) / duration.Seconds()
	}

	fmt.Fprintf(w, "  Records:       %d\n", totalRecords)
	successRate := 0.0
	if result.RequestCount > 0 {
		successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
	}
	fmt.Fprintf(w, "  Success rate:  %.2f%%\n", successRate)
	fmt.Fprintf(w, "  Errors:        %d\n", result.ErrorCount)
	fmt.Fprintf(w, "  Retries:       %d\n", result.RetryCount)
	fmt.Fprintf(w, "  Failed ids:    %d\n", len(result.FailedIDs))
	if len(result.ErrorsByType) > 0 {
		fmt.Fprintf(w, "  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Fprintf(w, "  Validation:    %v\n", valErrors)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", duration)
	fmt.Fprintf(w, "  Records/sec:   %.2f\n", recordsPerSec)
	fmt.Fprintf(w, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(w, separator)
}
