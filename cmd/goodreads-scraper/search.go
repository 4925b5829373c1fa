package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/goodreads-scraper/config"
	"github.com/aluiziolira/goodreads-scraper/extract"
	"github.com/aluiziolira/goodreads-scraper/scraper"
)

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var (
		field string
		page  int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog and print matching rows as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cfg, args[0], field, page)
		},
	}
	cmd.Flags().StringVar(&field, "field", "all", "Search field: title, author, or all")
	cmd.Flags().IntVar(&page, "page", 1, "Results page to fetch")
	return cmd
}

func runSearch(ctx context.Context, cfg *config.Config, query, field string, page int) error {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	html, err := s.SearchPage(ctx, query, field, page)
	if err != nil {
		return err
	}

	results, err := extract.SearchResultsFromHTML(html)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, results)
}
