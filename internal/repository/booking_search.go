package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingSearchQuery defines filters & pagination for listing imported
// bookings.  Mismatched selects bookings that failed validation against
// the source (true) or passed it (false); nil means either.
type BookingSearchQuery struct {
	Source     string
	Status     string
	Code       string
	Mismatched *bool
	Page       int
	PageSize   int
}

// BookingRow is one line of a booking listing.  Total is nil when the
// cached totals were never populated.
type BookingRow struct {
	ID              uint64           `json:"id"`
	Code            string           `json:"code"`
	Source          string           `json:"source"`
	ExternalID      int64            `json:"external_id"`
	Status          string           `json:"status"`
	MatchesExternal bool             `json:"matches_external"`
	ImportedAt      time.Time        `json:"imported_at"`
	Total           *decimal.Decimal `json:"total_amount"`
	SyncErrorCount  int              `json:"sync_error_count"`
}

// normalize clamps paging to 1..100 rows per page.
func (q *BookingSearchQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// Search lists bookings matching q, most recently imported first, and
// returns the page together with the total number of matches.
func (r *BookingRepo) Search(ctx context.Context, q BookingSearchQuery) ([]BookingRow, int64, error) {
	q.normalize()
	where := []string{}
	args := []any{}

	if q.Source != "" {
		where = append(where, "b.source = ?")
		args = append(args, q.Source)
	}
	if q.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, q.Status)
	}
	if q.Code != "" {
		where = append(where, "LOWER(b.code) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Code)+"%")
	}
	if q.Mismatched != nil {
		where = append(where, "b.matches_external = ?")
		args = append(args, !*q.Mismatched)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM bookings b WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT
			b.id,
			b.code,
			b.source,
			b.external_id,
			b.status,
			b.matches_external,
			b.imported_at,
			b.total_amount,
			(SELECT COUNT(*) FROM sync_errors se WHERE se.booking_id = b.id) AS sync_errors
		FROM bookings b
		WHERE ` + cond + `
		ORDER BY b.imported_at DESC, b.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]BookingRow, 0, q.PageSize)
	for rows.Next() {
		var d BookingRow
		var amount decimal.NullDecimal
		if err := rows.Scan(
			&d.ID,
			&d.Code,
			&d.Source,
			&d.ExternalID,
			&d.Status,
			&d.MatchesExternal,
			&d.ImportedAt,
			&amount,
			&d.SyncErrorCount,
		); err != nil {
			return nil, 0, err
		}
		if amount.Valid {
			v := amount.Decimal
			d.Total = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
