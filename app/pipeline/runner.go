package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/scrape"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
	"github.com/sahilcodelab/wbsu-notice-bot/app/source"
	"github.com/sahilcodelab/wbsu-notice-bot/app/summary"
)

// ErrAlreadyRunning is returned when a cycle is requested while one is
// in progress. Scheduled and forced runs are single-flight.
var ErrAlreadyRunning = errors.New("check cycle already running")

// NoticeNotifier fans one accepted notice out to subscribers.
type NoticeNotifier interface {
	Notify(notice *database.Notice) int
}

// Runner executes one check cycle: fetch and extract every enabled
// source in parallel, merge in source order, then classify, dedup,
// summarize, store and notify sequentially.
type Runner struct {
	sources       []*source.Config
	fetcher       *scrape.Fetcher
	extractor     *scrape.Extractor
	feedExtractor *scrape.FeedExtractor
	pages         *scrape.PageExtractor
	registry      *semester.Registry
	notices       database.NoticeRepository
	summarizer    summary.Summarizer
	notifier      NoticeNotifier
	workerCount   int
	retention     time.Duration

	running atomic.Bool
}

func NewRunner(sources []*source.Config, fetcher *scrape.Fetcher, extractor *scrape.Extractor,
	feedExtractor *scrape.FeedExtractor, pages *scrape.PageExtractor, registry *semester.Registry,
	notices database.NoticeRepository, summarizer summary.Summarizer, notifier NoticeNotifier,
	workerCount int, retention time.Duration) *Runner {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Runner{
		sources:       sources,
		fetcher:       fetcher,
		extractor:     extractor,
		feedExtractor: feedExtractor,
		pages:         pages,
		registry:      registry,
		notices:       notices,
		summarizer:    summarizer,
		notifier:      notifier,
		workerCount:   workerCount,
		retention:     retention,
	}
}

// Run executes one cycle, or returns ErrAlreadyRunning when another
// cycle holds the flight.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	return r.run(ctx)
}

// TriggerAsync starts a cycle in the background and reports whether it
// actually started. Concurrent triggers coalesce into a no-op.
func (r *Runner) TriggerAsync() bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer r.running.Store(false)
		if err := r.run(context.Background()); err != nil {
			slog.Error("Triggered check cycle failed", "error", err)
		}
	}()

	return true
}

type sourceResult struct {
	candidates []scrape.Candidate
	err        error
}

func (r *Runner) run(ctx context.Context) error {
	started := time.Now()
	slog.Info("Check cycle started", "sources", len(r.sources))

	results := r.fetchAll(ctx)

	newCount := 0
	skipped := 0
	for i, cfg := range r.sources {
		if !cfg.Enabled {
			continue
		}

		res := results[i]
		if res.err != nil {
			slog.Warn("Source check failed, skipping this cycle", "source", cfg.Name, "error", res.err)
			skipped++
			continue
		}

		for _, candidate := range res.candidates {
			accepted, err := r.processCandidate(ctx, cfg.Name, candidate)
			if err != nil {
				slog.Error("Failed to process candidate", "source", cfg.Name, "title", candidate.Title, "error", err)
				continue
			}
			if accepted != nil {
				newCount++
				delivered := r.notifier.Notify(accepted)
				slog.Info("New notice", "source", cfg.Name, "title", accepted.Title, "sems", accepted.Sems, "delivered", delivered)
			}
		}
	}

	if newCount > 0 {
		cutoff := time.Now().Add(-r.retention)
		if pruned, err := r.notices.Prune(cutoff); err != nil {
			slog.Error("Failed to prune old notices", "error", err)
		} else if pruned > 0 {
			slog.Info("Pruned old notices", "count", pruned)
		}
	}

	if err := r.notices.SetLastChecked(time.Now()); err != nil {
		slog.Error("Failed to update last_checked", "error", err)
	}

	slog.Info("Check cycle completed",
		"duration", time.Since(started).Round(time.Millisecond),
		"new", newCount,
		"sources_skipped", skipped)

	return nil
}

// fetchAll fetches and extracts every enabled source on a bounded
// worker pool. Results are slotted by source index so the merge order
// is the configured source order, regardless of completion order.
func (r *Runner) fetchAll(ctx context.Context) []sourceResult {
	results := make([]sourceResult, len(r.sources))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.checkSource(ctx, r.sources[i])
			}
		}()
	}

	for i, cfg := range r.sources {
		if !cfg.Enabled {
			continue
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (r *Runner) checkSource(ctx context.Context, cfg *source.Config) sourceResult {
	data, err := r.fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		return sourceResult{err: fmt.Errorf("fetch failed: %w", err)}
	}

	var candidates []scrape.Candidate
	switch cfg.Kind {
	case source.KindRSS:
		candidates, err = r.feedExtractor.Run(data, cfg)
	default:
		candidates, err = r.extractor.Run(data, cfg)
	}
	if err != nil {
		return sourceResult{err: fmt.Errorf("extraction failed: %w", err)}
	}

	slog.Debug("Source checked", "source", cfg.Name, "candidates", len(candidates))
	return sourceResult{candidates: candidates}
}

// processCandidate runs one candidate through dedup, classification,
// summarization and storage. It returns the accepted notice, or nil
// when the candidate was a duplicate or matched no semester.
func (r *Runner) processCandidate(ctx context.Context, sourceName string, candidate scrape.Candidate) (*database.Notice, error) {
	id := database.NoticeID(candidate.Title, candidate.URL)

	seen, err := r.notices.Seen(id)
	if err != nil {
		return nil, fmt.Errorf("dedup check failed: %w", err)
	}
	if seen {
		return nil, nil
	}

	sems := r.registry.Classify(candidate.Title)
	if len(sems) == 0 {
		return nil, nil
	}

	return r.notices.Accept(database.Notice{
		ID:        id,
		Title:     candidate.Title,
		URL:       candidate.URL,
		Source:    sourceName,
		Sems:      sems,
		Summary:   r.summarize(ctx, candidate),
		CreatedAt: time.Now(),
	})
}

// summarize produces the one-line summary, enriched with the linked
// page's readable text when there is one. Any failure falls back to
// the raw title.
func (r *Runner) summarize(ctx context.Context, candidate scrape.Candidate) string {
	text := candidate.Title
	if r.pages != nil {
		if content, err := r.pages.Run(ctx, candidate.URL); err == nil {
			text = candidate.Title + "\n\n" + content
		}
	}

	summarized, err := r.summarizer.Summarize(ctx, text)
	if err != nil {
		slog.Warn("Summarization failed, using title", "title", candidate.Title, "error", err)
		return candidate.Title
	}
	return summarized
}
