package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// JournalEntry is one attribute or buff notification recorded for replay and
// balancing analysis. For buff events Previous and Current hold the base and
// buffed value of the attribute at dispatch.
type JournalEntry struct {
	Tick       uint64
	Entity     string
	EntityID   uint64
	Event      string // "attribute_changed", "buff_added", ...
	Attribute  string
	Buff       string
	BuffID     string
	Previous   float64
	Current    float64
	TimeLeft   float64
	RecordedAt time.Time
}

var journalColumns = []string{
	"tick", "entity", "entity_id", "event", "attribute", "buff", "buff_id",
	"previous", "current", "time_left", "recorded_at",
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteJournal appends entries in one transaction using COPY.
func (r *JournalRepo) WriteJournal(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			int64(e.Tick), e.Entity, int64(e.EntityID), e.Event, e.Attribute, e.Buff, e.BuffID,
			e.Previous, e.Current, e.TimeLeft, e.RecordedAt,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"buff_journal"}, journalColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("journal copy %d entries: %w", len(entries), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

// Prune deletes entries recorded before cutoff and returns how many went.
func (r *JournalRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM buff_journal WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("journal prune: %w", err)
	}
	return tag.RowsAffected(), nil
}
