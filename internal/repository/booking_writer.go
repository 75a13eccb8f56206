package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/booking-reconciliation/internal/model"
)

// ReplaceBooking deletes the booking with b's external identity, if any,
// and inserts b with its whole subtree.  Foreign keys cascade the delete
// through items, tickets, adjustments, mapped adjustments and sync
// errors.  The existing row is locked with SELECT ... FOR UPDATE first
// so concurrent replacements of the same booking serialize on it.
func (t *sqlTx) ReplaceBooking(ctx context.Context, b *model.Booking) (bool, error) {
	if b.Customer == nil {
		return false, fmt.Errorf("booking %s has no customer", b.Identity)
	}

	replaced := false
	var oldID uint64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM bookings WHERE source = ? AND external_id = ? FOR UPDATE`,
		b.Identity.Source, b.Identity.ExternalID).Scan(&oldID)
	switch {
	case err == nil:
		if _, err := t.tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, oldID); err != nil {
			return false, fmt.Errorf("delete booking %d: %w", oldID, err)
		}
		replaced = true
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	args := []interface{}{
		b.Identity.Source, b.Identity.ExternalID, b.Code, b.Customer.ID, b.Status, b.TaxAmount,
		b.MatchesExternal, b.Validated, b.ImportedAt.UTC(),
	}
	args = append(args, totalsArgs(&b.Totals)...)
	id, err := t.insert(ctx, `INSERT INTO bookings
        (source, external_id, code, customer_id, status, tax_amount, matches_external, validated, imported_at, `+totalsColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return false, fmt.Errorf("insert booking: %w", err)
	}
	b.ID = id

	for i, it := range b.Items {
		if err := t.insertItem(ctx, b.ID, i, it); err != nil {
			return false, err
		}
	}
	for _, a := range b.Adjustments {
		if err := t.insertAdjustment(ctx, b.ID, nil, a); err != nil {
			return false, err
		}
	}
	for _, it := range b.Items {
		itemID := it.ID
		for _, a := range it.AddOns {
			if err := t.insertAdjustment(ctx, b.ID, &itemID, a); err != nil {
				return false, err
			}
		}
	}
	if err := t.insertMapped(ctx, b.ScopeTickets()); err != nil {
		return false, err
	}
	if err := t.insertSyncErrors(ctx, b); err != nil {
		return false, err
	}
	return replaced, nil
}

func (t *sqlTx) insertItem(ctx context.Context, bookingID uint64, pos int, it *model.BookingItem) error {
	if it.Event == nil {
		return fmt.Errorf("booking item %d has no event", it.ExternalID)
	}
	args := append([]interface{}{bookingID, it.ExternalID, it.Event.ID, pos}, totalsArgs(&it.Totals)...)
	id, err := t.insert(ctx, `INSERT INTO booking_items (booking_id, external_id, event_id, position, `+totalsColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert booking item %d: %w", it.ExternalID, err)
	}
	it.ID = id

	for i, tk := range it.Tickets {
		if tk.PersonCategory == nil {
			return fmt.Errorf("ticket %s has no person category", tk.Code)
		}
		args := append([]interface{}{it.ID, tk.Code, tk.PersonCategory.ID, i, tk.BasePrice}, totalsArgs(&tk.Totals)...)
		tid, err := t.insert(ctx, `INSERT INTO tickets (booking_item_id, code, person_category_id, position, price, `+totalsColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return fmt.Errorf("insert ticket %s: %w", tk.Code, err)
		}
		tk.ID = tid
	}
	return nil
}

func (t *sqlTx) insertAdjustment(ctx context.Context, bookingID uint64, itemID *uint64, a *model.Adjustment) error {
	var item, discount, addOn sql.NullInt64
	if itemID != nil {
		item = sql.NullInt64{Int64: int64(*itemID), Valid: true}
	}
	if a.Discount != nil {
		discount = sql.NullInt64{Int64: int64(a.Discount.ID), Valid: true}
	}
	if a.AddOn != nil {
		addOn = sql.NullInt64{Int64: int64(a.AddOn.ID), Valid: true}
	}
	id, err := t.insert(ctx, `INSERT INTO adjustments
        (booking_id, booking_item_id, kind, amount, discount_id, add_on_id, selection, description)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bookingID, item, string(a.Kind), a.Amount, discount, addOn, a.Selection, a.Description)
	if err != nil {
		return fmt.Errorf("insert %s adjustment: %w", a.Kind, err)
	}
	a.ID = id
	return nil
}

// insertMapped writes all mapped adjustments in one multi-row statement.
// Their ids are not read back; nothing references them.
func (t *sqlTx) insertMapped(ctx context.Context, tickets []*model.Ticket) error {
	var sb strings.Builder
	var args []interface{}
	sb.WriteString(`INSERT INTO mapped_adjustments (adjustment_id, ticket_id, amount) VALUES `)
	n := 0
	for _, tk := range tickets {
		for _, m := range tk.Mapped {
			if n > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?)")
			args = append(args, m.Source.ID, tk.ID, m.Amount)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if _, err := t.tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert mapped adjustments: %w", err)
	}
	return nil
}

func (t *sqlTx) insertSyncErrors(ctx context.Context, b *model.Booking) error {
	if len(b.SyncErrors) == 0 {
		return nil
	}
	var sb strings.Builder
	args := make([]interface{}, 0, len(b.SyncErrors)*5)
	sb.WriteString(`INSERT INTO sync_errors (booking_id, error_type, severity, message, created_at) VALUES `)
	for i, e := range b.SyncErrors {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		e.BookingID = b.ID
		args = append(args, b.ID, string(e.Type), string(e.Severity), e.Message, e.CreatedAt.UTC())
	}
	if _, err := t.tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert sync errors: %w", err)
	}
	return nil
}
