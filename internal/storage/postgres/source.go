package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noveee/SinisterBot/internal/domain"
)

// SourceStore reads the configured feed sources. Rows are managed by
// out-of-band tooling (migrations, SQL); the poller only ever reads them.
type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

// Sources returns all configured sources in registry order.
func (s *SourceStore) Sources(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	err := s.db.SelectContext(ctx, &sources, `
		SELECT id, name, feed_url, include_audio, created_at
		FROM sources
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}
