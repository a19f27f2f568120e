package domain

import "time"

// Source is one configured feed, immutable for the duration of a cycle.
type Source struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	FeedURL string `db:"feed_url"`
	// IncludeAudio controls whether enclosures are consulted for this feed.
	IncludeAudio bool      `db:"include_audio"`
	CreatedAt    time.Time `db:"created_at"`
}

// Entry is one normalized feed item produced for a single poll cycle.
// It is never persisted itself; only the LedgerRecord derived from it is.
type Entry struct {
	GUID        string
	SourceID    int64
	Title       string
	Link        string
	Summary     string // raw text, may contain markup
	PublishedAt *time.Time
	AudioURL    *string
}

// LedgerRecord is the persisted identity of an announced-or-pending entry.
// GUID is the primary key; Posted flips false -> true exactly once, after the
// announcement for this record succeeds.
type LedgerRecord struct {
	GUID        string     `db:"guid"`
	FeedID      int64      `db:"feed_id"`
	Title       string     `db:"title"`
	Link        string     `db:"link"`
	Summary     string     `db:"summary"`
	PublishedAt *time.Time `db:"published"`
	AudioURL    *string    `db:"audio"`
	Posted      bool       `db:"posted"`
}

// RecordFromEntry derives the ledger row for a freshly seen entry.
func RecordFromEntry(e Entry) LedgerRecord {
	return LedgerRecord{
		GUID:        e.GUID,
		FeedID:      e.SourceID,
		Title:       e.Title,
		Link:        e.Link,
		Summary:     e.Summary,
		PublishedAt: e.PublishedAt,
		AudioURL:    e.AudioURL,
	}
}
