package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noveee/SinisterBot/internal/domain"
)

// pqUniqueViolation is the Postgres error code for a unique constraint hit.
const pqUniqueViolation = "23505"

// LedgerStore persists seen-entry identities keyed by guid. It is the single
// authority for "already announced"; no in-memory state survives a cycle.
type LedgerStore struct {
	db *sqlx.DB
}

func NewLedgerStore(db *sqlx.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Exists reports whether a record with the guid is present, posted or not.
func (s *LedgerStore) Exists(ctx context.Context, guid string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM entries WHERE guid = $1)`, guid)
	if err != nil {
		return false, fmt.Errorf("check guid %q: %w", guid, err)
	}
	return exists, nil
}

// Insert persists a new record with posted = false. A guid already present
// yields domain.ErrDuplicateGUID; the primary key is the serialization point,
// so concurrent inserts for one guid resolve with exactly one winner.
func (s *LedgerStore) Insert(ctx context.Context, record *domain.LedgerRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (guid, feed_id, title, link, summary, published, audio, posted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`,
		record.GUID,
		record.FeedID,
		record.Title,
		record.Link,
		record.Summary,
		record.PublishedAt,
		record.AudioURL,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateGUID
		}
		return fmt.Errorf("insert guid %q: %w", record.GUID, err)
	}
	return nil
}

// MarkPosted flips the posted flag after a successful announcement.
func (s *LedgerStore) MarkPosted(ctx context.Context, guid string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET posted = TRUE WHERE guid = $1`, guid)
	if err != nil {
		return fmt.Errorf("mark posted %q: %w", guid, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark posted %q: %w", guid, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PurgeOlderThan deletes rows whose published timestamp is non-null and older
// than the cutoff, returning the number deleted. Rows without a published
// timestamp are kept indefinitely since their age cannot be evaluated.
func (s *LedgerStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE published IS NOT NULL AND published < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return res.RowsAffected()
}
