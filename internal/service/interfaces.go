package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/noveee/SinisterBot/internal/domain"
)

// SourceProvider lists the configured feed sources, read-only during a cycle.
type SourceProvider interface {
	Sources(ctx context.Context) ([]domain.Source, error)
}

// Fetcher retrieves and normalizes one source's feed. A whole-source failure
// is an error; malformed individual items are not.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]domain.Entry, error)
}

// LedgerStore is the persisted dedup ledger keyed by guid.
type LedgerStore interface {
	Exists(ctx context.Context, guid string) (bool, error)
	Insert(ctx context.Context, record *domain.LedgerRecord) error
	MarkPosted(ctx context.Context, guid string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier delivers one announcement to the downstream sink.
type Notifier interface {
	Send(ctx context.Context, sourceName, title, link string) error
}
