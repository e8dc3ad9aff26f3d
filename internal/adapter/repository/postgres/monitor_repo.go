package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albisri/kasledger/internal/domain"
)

// MonitorRepository implements usecase.MonitorRepository with read-only
// aggregate queries over the ledger.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// FindDuplicateGroups groups posted entries by category, calendar day and
// amount and returns the groups with more than one member.
func (r *MonitorRepository) FindDuplicateGroups(ctx context.Context) ([]*domain.DuplicateGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, DATE_TRUNC('day', entry_date) AS day, amount,
			ARRAY_AGG(id ORDER BY id) AS entry_ids
		FROM entries
		WHERE status = 'posted'
		GROUP BY category, day, amount
		HAVING COUNT(*) > 1
		ORDER BY day DESC, category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.DuplicateGroup
	for rows.Next() {
		var (
			g      domain.DuplicateGroup
			day    pgtype.Timestamptz
			amount pgtype.Numeric
		)
		if err := rows.Scan(&g.Category, &day, &amount, &g.EntryIDs); err != nil {
			return nil, err
		}
		g.Date = day.Time
		g.Amount = numericToDecimal(amount)
		groups = append(groups, &g)
	}

	return groups, rows.Err()
}

// FindOrphans returns posted auto-posted entries whose origin record is gone
// from the source registry.
func (r *MonitorRepository) FindOrphans(ctx context.Context) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM entries e
		WHERE e.auto_posted AND e.status = 'posted'
		  AND NOT EXISTS (
			SELECT 1 FROM source_records s
			WHERE s.source_module = e.source_module AND s.source_id = e.source_id
		  )
		ORDER BY e.entry_date DESC, e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SummarizeAutoPosted aggregates posted auto-posted entries per origin module
// over a date range. Totals are signed: inflows count positive, outflows
// negative.
func (r *MonitorRepository) SummarizeAutoPosted(ctx context.Context, from, to time.Time) ([]*domain.AutoPostedSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT source_module,
			COUNT(*),
			SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END),
			AVG(CASE WHEN direction = 'in' THEN amount ELSE -amount END)
		FROM entries
		WHERE auto_posted AND status = 'posted'
		  AND entry_date BETWEEN $1 AND $2
		GROUP BY source_module
		ORDER BY source_module`,
		timeToPgTimestamptz(from), timeToPgTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.AutoPostedSummary
	for rows.Next() {
		var (
			s       domain.AutoPostedSummary
			total   pgtype.Numeric
			average pgtype.Numeric
		)
		if err := rows.Scan(&s.SourceModule, &s.Count, &total, &average); err != nil {
			return nil, err
		}
		s.Total = numericToDecimal(total)
		s.Average = numericToDecimal(average)
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}
