package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/model"
)

// BookingRepo serves read-only queries over imported bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// GetSummary loads the summary of booking id together with its sync
// errors in insertion order.  ErrNotFound is returned when no booking
// has that id.  Totals stays nil when the cached columns are NULL.
func (r *BookingRepo) GetSummary(ctx context.Context, id uint64) (*model.Summary, error) {
	const q = `SELECT b.id, b.code, b.source, b.external_id, b.status, b.matches_external, b.validated, b.imported_at,
                      b.base_price, b.discounts, b.fees, b.add_ons, b.manual_adjustments, b.item_add_ons,
                      b.gross_amount, b.total_amount,
                      (SELECT COUNT(*) FROM booking_items bi WHERE bi.booking_id = b.id),
                      (SELECT COUNT(*) FROM tickets t JOIN booking_items bi ON bi.id = t.booking_item_id WHERE bi.booking_id = b.id)
               FROM bookings b
               WHERE b.id = ?`
	var s model.Summary
	var cols [8]decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Code, &s.Identity.Source, &s.Identity.ExternalID, &s.Status,
		&s.MatchesExternal, &s.Validated, &s.ImportedAt,
		&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7],
		&s.ItemCount, &s.TicketCount,
	)
	if err != nil {
		return nil, translate(err)
	}
	s.Totals = amountsFrom(cols)

	errs, err := r.ListSyncErrors(ctx, id)
	if err != nil {
		return nil, err
	}
	s.SyncErrors = errs
	return &s, nil
}

// ListSyncErrors returns the sync errors of booking id in insertion
// order.  An unknown booking yields an empty slice.
func (r *BookingRepo) ListSyncErrors(ctx context.Context, bookingID uint64) ([]model.SyncError, error) {
	const q = `SELECT id, booking_id, error_type, severity, message, created_at
               FROM sync_errors WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SyncError{}
	for rows.Next() {
		var e model.SyncError
		var typ, sev string
		if err := rows.Scan(&e.ID, &e.BookingID, &typ, &sev, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = model.SyncErrorType(typ)
		e.Severity = model.Severity(sev)
		out = append(out, e)
	}
	return out, rows.Err()
}

// amountsFrom returns nil unless every cached column is populated.
func amountsFrom(c [8]decimal.NullDecimal) *model.Amounts {
	for _, v := range c {
		if !v.Valid {
			return nil
		}
	}
	return &model.Amounts{
		BasePrice:         c[0].Decimal,
		Discounts:         c[1].Decimal,
		Fees:              c[2].Decimal,
		AddOns:            c[3].Decimal,
		ManualAdjustments: c[4].Decimal,
		ItemAddOns:        c[5].Decimal,
		Gross:             c[6].Decimal,
		Total:             c[7].Decimal,
	}
}
