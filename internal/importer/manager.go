// Package importer reconstructs a local booking aggregate from a remote
// reservation record.  The Manager resolves reference data, rebuilds
// tickets from ticket codes, materializes adjustments, runs the ticket
// adjustment transform, validates the result against the source's own
// pricing and hands the aggregate to the store, all inside one
// transaction.  Nothing persists when any step fails.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
	"github.com/iliyamo/booking-reconciliation/internal/totals"
	"github.com/iliyamo/booking-reconciliation/internal/transform"
)

// DefaultFeeKeywords classifies manual adjustment lines as fees when no
// keywords are configured.
var DefaultFeeKeywords = []string{"fee"}

// Options configures a Manager.
type Options struct {
	// FeeKeywords are matched case-insensitively against the labels of
	// manual adjustment lines; a match turns the line into a fee.
	FeeKeywords []string
	// Now overrides the clock used for ImportedAt.  Defaults to time.Now.
	Now func() time.Time
}

// Manager runs single-booking imports.  It is stateless between calls
// and safe for concurrent use; per-import state lives in an importRun.
type Manager struct {
	transform   *transform.TicketAdjustmentTransform
	feeKeywords []string
	now         func() time.Time
}

// NewManager returns a Manager configured by opts.
func NewManager(opts Options) *Manager {
	kw := opts.FeeKeywords
	if len(kw) == 0 {
		kw = DefaultFeeKeywords
	}
	lowered := make([]string, 0, len(kw))
	for _, k := range kw {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{transform: transform.New(), feeKeywords: lowered, now: now}
}

// Import reconstructs the booking described by rec inside tx.  Any
// previously imported booking with the same (source, rec.ID) identity is
// replaced with its whole subtree.  Anomalies that still allow an
// import are recorded as sync errors on the returned booking; fatal
// problems (malformed record, unknown customer or add-on, store
// failures) are returned as errors and should roll tx back.
func (m *Manager) Import(ctx context.Context, tx Tx, source string, rec *remote.ReservationRecord) (*model.Booking, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	customerID := model.ExternalIdentity{Source: source, ExternalID: rec.CustomerID}
	customer, err := tx.FindCustomer(ctx, customerID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s (reservation %d)", ErrCustomerNotFound, customerID, rec.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", customerID, err)
	}

	code := rec.Code
	if code == "" {
		code = strconv.FormatInt(rec.ID, 10)
	}
	b := &model.Booking{
		Code:       code,
		Identity:   model.ExternalIdentity{Source: source, ExternalID: rec.ID},
		Customer:   customer,
		Status:     rec.Status,
		TaxAmount:  rec.TaxAmount,
		ImportedAt: m.now().UTC(),
	}

	r := &importRun{
		m:          m,
		ctx:        ctx,
		tx:         tx,
		source:     source,
		rec:        rec,
		booking:    b,
		categories: make(map[int64]*model.PersonCategory),
		products:   make(map[int64]*model.Product),
	}

	if err := r.discounts(); err != nil {
		return nil, err
	}
	r.manualAdjustmentsAndFees()
	for i := range rec.BookingItems {
		if err := r.bookingItem(&rec.BookingItems[i]); err != nil {
			return nil, err
		}
	}
	// Booking-level add-ons come last: a per-ticket price basis needs
	// the final ticket count.
	if err := r.addOns(rec.AddOnSelections, len(b.ScopeTickets()), b.AddAdjustment); err != nil {
		return nil, err
	}

	res, err := m.transform.Run(b)
	if err != nil {
		return nil, fmt.Errorf("transform booking %s: %w", b.Code, err)
	}
	validate(b, rec)
	totals.Populate(b)

	replaced, err := tx.ReplaceBooking(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("store booking %s: %w", b.Identity, err)
	}
	log.Printf("importer: booking %s (%s) imported: items=%d tickets=%d adjustments=%d mapped=%d sync_errors=%d matches=%t replaced=%t",
		b.Code, b.Identity, len(b.Items), len(b.ScopeTickets()), res.Adjustments, res.Mapped, len(b.SyncErrors), b.MatchesExternal, replaced)
	return b, nil
}

// isFee reports whether a manual adjustment label names a fee.
func (m *Manager) isFee(label string) bool {
	l := strings.ToLower(label)
	for _, k := range m.feeKeywords {
		if strings.Contains(l, k) {
			return true
		}
	}
	return false
}

// importRun carries the state of one Import call.
type importRun struct {
	m       *Manager
	ctx     context.Context
	tx      Tx
	source  string
	rec     *remote.ReservationRecord
	booking *model.Booking

	categories map[int64]*model.PersonCategory // by external index
	products   map[int64]*model.Product        // by external id
}

func (r *importRun) identity(id int64) model.ExternalIdentity {
	return model.ExternalIdentity{Source: r.source, ExternalID: id}
}

// personCategory resolves a person category by its external index,
// creating it (and recording missingPersonCategory) on first sight.
func (r *importRun) personCategory(index int64, label string) (*model.PersonCategory, error) {
	if pc, ok := r.categories[index]; ok {
		return pc, nil
	}
	id := r.identity(index)
	pc, err := r.tx.FindPersonCategory(r.ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		pc = &model.PersonCategory{Identity: id, Name: label}
		if err := r.tx.CreatePersonCategory(r.ctx, pc); err != nil {
			return nil, fmt.Errorf("create person category %s: %w", id, err)
		}
		r.booking.Record(model.SyncMissingPersonCategory,
			"person category %d (%q) was unknown and has been created", index, label)
	case err != nil:
		return nil, fmt.Errorf("find person category %s: %w", id, err)
	}
	r.categories[index] = pc
	return pc, nil
}

// event upserts the product and event a booking item references.
func (r *importRun) event(item *remote.BookingItemRecord) (*model.Event, error) {
	product, ok := r.products[item.ProductID]
	if !ok {
		product = &model.Product{Identity: r.identity(item.ProductID), Name: item.ProductName}
		if err := r.tx.UpsertProduct(r.ctx, product); err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", product.Identity, err)
		}
		r.products[item.ProductID] = product
	}

	ev := &model.Event{Identity: r.identity(item.AvailabilityID), Product: product, Title: item.EventTitle}
	if item.StartsAt != nil && *item.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, *item.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("%w: booking item %d: startsAt %q: %v", ErrMalformedRecord, item.BookingItemID, *item.StartsAt, err)
		}
		t = t.UTC()
		ev.StartsAt = &t
	}
	if err := r.tx.UpsertEvent(r.ctx, ev); err != nil {
		return nil, fmt.Errorf("upsert event %s: %w", ev.Identity, err)
	}
	return ev, nil
}

// bookingItem builds one booking item with its tickets and add-ons.
func (r *importRun) bookingItem(rec *remote.BookingItemRecord) error {
	ev, err := r.event(rec)
	if err != nil {
		return err
	}
	it := &model.BookingItem{ExternalID: rec.BookingItemID, Event: ev}
	r.booking.AddItem(it)

	table, err := r.priceTable(rec)
	if err != nil {
		return err
	}
	r.issueTickets(it, rec, table)
	return r.addOns(rec.AddOnSelections, len(it.Tickets), it.AddAddOn)
}
