package importer

import (
	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
	"github.com/iliyamo/booking-reconciliation/internal/totals"
)

// validate compares the reconstructed booking against the source's own
// view and records a sync error per mismatch.  It sets Validated, and
// MatchesExternal when no error-severity mismatch was found.  Must run
// after the transform.
func validate(b *model.Booking, rec *remote.ReservationRecord) {
	matches := true

	computed := totals.Compute(b)
	if !money.WithinTolerance(computed.Total, rec.Pricing.TotalAmount) {
		b.Record(model.SyncTotalMismatch, "computed total %s differs from source total %s",
			money.Round(computed.Total).String(), rec.Pricing.TotalAmount.String())
		matches = false
	}

	// The source's item count is the number of distinct booking items it
	// reports; a repeated bookingItemId still produced its own item.
	sourceItems := make(map[int64]bool, len(rec.BookingItems))
	for i := range rec.BookingItems {
		sourceItems[rec.BookingItems[i].BookingItemID] = true
	}
	if len(b.Items) != len(sourceItems) {
		b.Record(model.SyncItemCountMismatch, "reconstructed %d booking items, source reports %d",
			len(b.Items), len(sourceItems))
		matches = false
	}

	// Tickets are rebuilt from the priced quantities, so they are checked
	// per item against the codes the source actually issued.
	for i, it := range b.Items {
		if i >= len(rec.BookingItems) {
			break
		}
		ri := &rec.BookingItems[i]
		if got, issued := len(it.Tickets), len(ri.TicketCodes); got != issued {
			b.Record(model.SyncTicketCountMismatch,
				"item %d: reconstructed %d tickets, source issued %d ticket codes",
				ri.BookingItemID, got, issued)
			matches = false
		}
	}

	// Informational only: the source's pricing record may account for
	// promotions differently than its line totals.
	var reported []remote.PriceAdjustment
	for _, pa := range rec.Pricing.PriceAdjustments {
		if pa.Type == remote.LineDiscount {
			reported = append(reported, pa)
		}
	}
	if len(reported) > 0 {
		want := money.Zero
		for _, pa := range reported {
			want = want.Sub(pa.Amount.Abs())
		}
		if !money.WithinTolerance(computed.Discounts, want) {
			b.Record(model.SyncDiscountTotalMismatch, "discounts total %s, pricing record reports %s",
				money.Round(computed.Discounts).String(), want.String())
		}
	}

	b.Validated = true
	b.MatchesExternal = matches
}
