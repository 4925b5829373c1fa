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

func newBookCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Fetch one book's detail page and print its record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd.Context(), cfg, args[0])
		},
	}
}

func runBook(ctx context.Context, cfg *config.Config, id string) error {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	html, err := s.BookPage(ctx, id)
	if err != nil {
		return err
	}

	book, err := extract.BookFromHTML(html)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, book)
}
