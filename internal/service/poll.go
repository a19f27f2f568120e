package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/noveee/SinisterBot/internal/config"
	"github.com/noveee/SinisterBot/internal/domain"
)

// PollService runs one full sweep over all configured sources: fetch,
// deduplicate against the ledger, announce new entries, then purge stale
// ledger rows. Failures are isolated per source and per entry; only an
// unreachable ledger at cycle start aborts the whole cycle.
type PollService struct {
	sources  SourceProvider
	fetcher  Fetcher
	ledger   LedgerStore
	notifier Notifier
	logger   *slog.Logger
	config   config.PollConfig
}

func NewPollService(
	sources SourceProvider,
	fetcher Fetcher,
	ledger LedgerStore,
	notifier Notifier,
	logger *slog.Logger,
	cfg config.PollConfig,
) *PollService {
	return &PollService{
		sources:  sources,
		fetcher:  fetcher,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger.With("component", "poll"),
		config:   cfg,
	}
}

// Run executes one poll cycle and returns its stats. The retention cutoff is
// measured against the wall clock at cycle start.
func (s *PollService) Run(ctx context.Context) (*domain.CycleStats, error) {
	start := time.Now()

	sources, err := s.sources.Sources(ctx)
	if err != nil {
		// The ledger store backs the registry too; if it is unreachable
		// nothing can be deduplicated, so the cycle is abandoned and the
		// scheduler's next tick is the retry.
		return nil, fmt.Errorf("list sources: %w", err)
	}

	stats := &domain.CycleStats{Sources: len(sources)}

	for _, src := range sources {
		if ctx.Err() != nil {
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		}
		s.pollSource(ctx, src, stats)
	}

	cutoff := start.Add(-s.config.RetentionWindow())
	purged, err := s.ledger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		stats.StoreErrors++
		s.logger.Error("purge failed", "error", err)
	} else {
		stats.Purged = purged
	}

	stats.Duration = time.Since(start)

	s.logger.Info("cycle completed",
		"sources", stats.Sources,
		"fetched", stats.Fetched,
		"new", stats.New,
		"announced", stats.Announced,
		"skipped", stats.Skipped,
		"fetch_errors", stats.FetchErrors,
		"send_errors", stats.SendErrors,
		"store_errors", stats.StoreErrors,
		"purged", stats.Purged,
		"duration", stats.Duration,
	)

	return stats, nil
}

// pollSource processes one source; its failure never blocks the others.
func (s *PollService) pollSource(ctx context.Context, src domain.Source, stats *domain.CycleStats) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	entries, err := s.fetcher.Fetch(fetchCtx, src)
	cancel()
	if err != nil {
		stats.FetchErrors++
		s.logger.Warn("source fetch failed",
			"source", src.Name,
			"error", err,
		)
		return
	}
	stats.Fetched += len(entries)

	for i := range entries {
		s.processEntry(ctx, src, entries[i], stats)
	}
}

// processEntry drives one entry through the ledger state machine:
// unseen -> inserted (posted = false) -> announced -> posted = true.
//
// The unseen check tests guid existence only, not the posted flag. An entry
// whose announcement fails after a successful insert therefore stays at
// posted = false and is never retried: announcements are at-most-once. The
// alternative, retrying unposted records on later cycles, was rejected.
func (s *PollService) processEntry(ctx context.Context, src domain.Source, entry domain.Entry, stats *domain.CycleStats) {
	exists, err := s.ledger.Exists(ctx, entry.GUID)
	if err != nil {
		stats.StoreErrors++
		s.logger.Error("ledger lookup failed", "guid", entry.GUID, "error", err)
		return
	}
	if exists {
		stats.Skipped++
		return
	}

	record := domain.RecordFromEntry(entry)
	if err := s.ledger.Insert(ctx, &record); err != nil {
		if errors.Is(err, domain.ErrDuplicateGUID) {
			// Benign race with a concurrent cycle; the other writer won.
			stats.Skipped++
			return
		}
		stats.StoreErrors++
		s.logger.Error("ledger insert failed", "guid", entry.GUID, "error", err)
		return
	}
	stats.New++

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	err = s.notifier.Send(sendCtx, src.Name, entry.Title, entry.Link)
	cancel()
	if err != nil {
		stats.SendErrors++
		s.logger.Warn("announcement failed, entry stays unposted",
			"guid", entry.GUID,
			"source", src.Name,
			"error", err,
		)
		return
	}

	if err := s.ledger.MarkPosted(ctx, entry.GUID); err != nil {
		// The announcement already went out, so the entry counts as
		// delivered either way; a missing row is a consistency warning.
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("posted guid missing from ledger", "guid", entry.GUID)
		} else {
			stats.StoreErrors++
			s.logger.Error("mark posted failed", "guid", entry.GUID, "error", err)
		}
	}

	stats.Announced++
}
