package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/goodreads-scraper/extract"
	"github.com/aluiziolira/goodreads-scraper/models"
	"github.com/aluiziolira/goodreads-scraper/pipeline"
)

// Export fetches every book id, assembles detail records, and streams them
// through the pipeline. A canceled context stops feeding new ids; work
// already picked up still drains. The returned summary covers both stages.
func (s *Scraper) Export(ctx context.Context, ids []string, p *pipeline.Pipeline) (*models.ExportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	workers := s.cfg.Parallelism
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []string
	)
	fail := func(id string) {
		failedMu.Lock()
		failed = append(failed, id)
		failedMu.Unlock()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if ctx.Err() != nil {
					fail(id)
					continue
				}
				record, err := s.exportOne(ctx, id)
				if err != nil {
					slog.Error("export book failed",
						slog.String("id", id),
						slog.Any("error", err),
					)
					fail(id)
					continue
				}
				if err := p.Process(record); err != nil {
					if !errors.Is(err, pipeline.ErrPipelineClosed) {
						slog.Error("pipeline process error",
							slog.String("id", id),
							slog.Any("error", err),
						)
					}
					fail(id)
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	result := &models.ExportResult{
		StartTime:    start,
		EndTime:      time.Now(),
		ErrorCount:   s.ErrorCount(),
		FailedIDs:    failed,
		ErrorsByType: s.ErrorsByType(),
		RetryCount:   s.RetryCount(),
		RequestCount: s.RequestCount(),
	}
	if metrics := p.GetMetrics(); metrics != nil {
		if processed, ok := metrics["processed_records"].(int64); ok {
			result.TotalCount = int(processed)
		}
	}
	return result, ctx.Err()
}

func (s *Scraper) exportOne(ctx context.Context, id string) (*models.ExportRecord, error) {
	html, err := s.BookPage(ctx, id)
	if err != nil {
		return nil, err
	}
	book, err := extract.BookFromHTML(html)
	if err != nil {
		return nil, err
	}
	s.Metrics.IncRecords()
	return &models.ExportRecord{GoodreadsID: id, BookDetail: book}, nil
}
