package importer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
	"github.com/iliyamo/booking-reconciliation/internal/repository/memstore"
)

const src = "https://reservations.example.com"

func ident(id int64) model.ExternalIdentity {
	return model.ExternalIdentity{Source: src, ExternalID: id}
}

func i64(v int64) *int64   { return &v }
func str(v string) *string { return &v }

func dec(v string) *decimal.Decimal {
	d := money.MustParse(v)
	return &d
}

func newStore() *memstore.Store {
	s := memstore.New()
	s.AddCustomer(&model.Customer{Identity: ident(55), Name: "Ada"})
	s.AddPersonCategory(&model.PersonCategory{Identity: ident(1), Name: "Adult"})
	s.AddPersonCategory(&model.PersonCategory{Identity: ident(2), Name: "Child"})
	s.AddAddOn(&model.AddOn{Identity: ident(40), Name: "Lunch", PriceBasis: model.PricePerTicket})
	s.AddAddOn(&model.AddOn{Identity: ident(41), Name: "Photos", PriceBasis: model.PricePerItem})
	return s
}

func ticketLine(index int64, qty int, price string) remote.LineTotal {
	return remote.LineTotal{Type: remote.LineTicketPrice, Label: "cat", Quantity: qty, Price: money.MustParse(price), PersonCategoryIndex: i64(index)}
}

func codes(pairs ...interface{}) []remote.TicketCode {
	var out []remote.TicketCode
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, remote.TicketCode{Code: pairs[i].(string), PersonCategoryIndex: int64(pairs[i+1].(int))})
	}
	return out
}

// record is a booking of two adults at 60 and one child at 20 with a
// discount, a fee, a keyword fee, a manual adjustment, a per-ticket item
// add-on and a per-item booking add-on.  Its source total is 149.
func record() *remote.ReservationRecord {
	return &remote.ReservationRecord{
		ID:         981,
		Code:       "BK",
		Status:     "CONFIRMED",
		CustomerID: 55,
		TaxAmount:  money.MustParse("1.20"),
		LineTotals: []remote.LineTotal{
			{Type: remote.LineDiscount, Label: "SPRING", Quantity: 1, Price: money.MustParse("-10"), PromotionID: i64(3)},
			{Type: remote.LineFee, Label: "Booking", Quantity: 1, Price: money.MustParse("2.50")},
			{Type: remote.LineManualAdjustment, Label: "Service Fee", Quantity: 1, Price: money.MustParse("1")},
			{Type: remote.LineManualCorrection, Label: "Goodwill", Quantity: 1, Price: money.MustParse("-1.50")},
		},
		AddOnSelections: []remote.AddOnSelection{
			{AddOnID: 41, Options: []remote.AddOnOption{{Label: str("Digital"), Price: dec("5")}}},
		},
		BookingItems: []remote.BookingItemRecord{{
			AvailabilityID: 700,
			BookingItemID:  1,
			ProductID:      70,
			ProductName:    "Harbour cruise",
			StartsAt:       str("2026-05-01T10:00:00Z"),
			LineTotals:     []remote.LineTotal{ticketLine(1, 2, "120"), ticketLine(2, 1, "20")},
			TicketCodes:    codes("A1", 1, "A2", 1, "C1", 2),
			AddOnSelections: []remote.AddOnSelection{
				{AddOnID: 40, Options: []remote.AddOnOption{{Label: nil, Price: dec("9")}, {Label: str("Sandwich"), Price: dec("4")}}},
			},
		}},
		Pricing: remote.PricingRecord{TotalAmount: money.MustParse("149")},
	}
}

func run(t *testing.T, s *memstore.Store, rec *remote.ReservationRecord, opts importer.Options) (*model.Booking, error) {
	t.Helper()
	m := importer.NewManager(opts)
	var out *model.Booking
	err := s.WithTx(context.Background(), func(tx importer.Tx) error {
		b, err := m.Import(context.Background(), tx, src, rec)
		out = b
		return err
	})
	return out, err
}

func TestImportReconstructsBooking(t *testing.T) {
	s := newStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := run(t, s, record(), importer.Options{Now: func() time.Time { return at }})
	require.NoError(t, err)

	assert.Empty(t, b.SyncErrors)
	assert.True(t, b.Validated)
	assert.True(t, b.MatchesExternal)
	assert.Equal(t, at, b.ImportedAt)
	assert.Equal(t, "Ada", b.Customer.Name)
	assert.NotZero(t, b.ID)

	require.Len(t, b.Items, 1)
	it := b.Items[0]
	require.NotNil(t, it.Event.StartsAt)
	assert.Equal(t, "Harbour cruise", it.Event.Product.Name)
	require.Len(t, it.Tickets, 3)
	var got []string
	for _, tk := range it.Tickets {
		got = append(got, tk.Code+"@"+tk.BasePrice.String())
	}
	assert.Equal(t, []string{"A1@60", "A2@60", "C1@20"}, got)

	kinds := map[model.AdjustmentKind]int{}
	for _, a := range b.Adjustments {
		kinds[a.Kind]++
	}
	assert.Equal(t, map[model.AdjustmentKind]int{
		model.KindDiscount:         1,
		model.KindFee:              2,
		model.KindManualAdjustment: 1,
		model.KindAddOn:            1,
	}, kinds)
	require.Len(t, it.AddOns, 1)
	assert.True(t, it.AddOns[0].Amount.Equal(money.MustParse("12")), "per-ticket add-on is multiplied by the ticket count")
	assert.Equal(t, "Sandwich", it.AddOns[0].Selection)

	total, err := b.Totals.Get()
	require.NoError(t, err)
	assert.True(t, total.Total.Equal(money.MustParse("149")), "total %s", total.Total)
	assert.True(t, total.Discounts.Equal(money.MustParse("-10")))
	assert.True(t, total.Fees.Equal(money.MustParse("3.5")))
	assert.True(t, total.ManualAdjustments.Equal(money.MustParse("-1.5")))
	assert.True(t, total.ItemAddOns.Equal(money.MustParse("12")))
	assert.True(t, total.AddOns.Equal(money.MustParse("5")))

	stored, ok := s.Booking(ident(981))
	require.True(t, ok)
	assert.Same(t, b, stored)
}

func TestDuplicateDiscountLinesAreMerged(t *testing.T) {
	rec := record()
	rec.LineTotals[0].Price = money.MustParse("-5")
	rec.LineTotals = append(rec.LineTotals, remote.LineTotal{Type: remote.LineDiscount, Label: "SPRING", Quantity: 1, Price: money.MustParse("-5"), PromotionID: i64(3)})

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	var discounts []*model.Adjustment
	for _, a := range b.Adjustments {
		if a.Kind == model.KindDiscount {
			discounts = append(discounts, a)
		}
	}
	require.Len(t, discounts, 1)
	assert.True(t, discounts[0].Amount.Equal(money.MustParse("-10")))
	assert.Len(t, b.SyncErrorsOfType(model.SyncExtraDiscountCodes), 1)
	assert.True(t, b.MatchesExternal)
}

func TestDiscountLabelsSharingAPromotion(t *testing.T) {
	rec := record()
	rec.LineTotals[0].Price = money.MustParse("-4")
	rec.LineTotals = append(rec.LineTotals, remote.LineTotal{Type: remote.LineDiscount, Label: "EASTER", Quantity: 1, Price: money.MustParse("-6"), PromotionID: i64(3)})
	s := newStore()

	b, err := run(t, s, rec, importer.Options{})
	require.NoError(t, err)

	var labels []string
	var refs []*model.Discount
	for _, a := range b.Adjustments {
		if a.Kind == model.KindDiscount {
			labels = append(labels, a.Description)
			refs = append(refs, a.Discount)
		}
	}
	assert.Equal(t, []string{"SPRING", "EASTER"}, labels)
	require.Len(t, refs, 2)
	assert.Same(t, refs[0], refs[1], "one promotion resolves to one discount")
	assert.Equal(t, 1, s.Discounts())
	assert.Empty(t, b.SyncErrorsOfType(model.SyncExtraDiscountCodes))
	assert.True(t, b.MatchesExternal)
}

func TestTicketCountMismatchClearsMatch(t *testing.T) {
	cases := map[string][]remote.TicketCode{
		"extra codes": codes("A1", 1, "A2", 1, "C1", 2, "A3", 1, "C2", 2),
		"no codes":    nil,
		"one code":    codes("A1", 1),
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := record()
			rec.BookingItems[0].TicketCodes = tc

			b, err := run(t, newStore(), rec, importer.Options{})
			require.NoError(t, err)

			assert.Len(t, b.ScopeTickets(), 3)
			mismatch := b.SyncErrorsOfType(model.SyncTicketCountMismatch)
			require.Len(t, mismatch, 1)
			assert.Equal(t, model.SeverityError, mismatch[0].Severity)
			assert.Empty(t, b.SyncErrorsOfType(model.SyncTotalMismatch))
			assert.False(t, b.MatchesExternal)
			assert.True(t, b.Validated)
		})
	}
}

func TestRepeatedBookingItemIsItemCountMismatch(t *testing.T) {
	rec := record()
	again := rec.BookingItems[0]
	again.TicketCodes = codes("A4", 1, "A5", 1, "C2", 2)
	again.AddOnSelections = nil
	rec.BookingItems = append(rec.BookingItems, again)

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	assert.Len(t, b.Items, 2)
	mismatch := b.SyncErrorsOfType(model.SyncItemCountMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, model.SeverityError, mismatch[0].Severity)
	assert.Empty(t, b.SyncErrorsOfType(model.SyncTicketCountMismatch))
	assert.False(t, b.MatchesExternal)

	rec.BookingItems[1].BookingItemID = 2
	b, err = run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)
	assert.Empty(t, b.SyncErrorsOfType(model.SyncItemCountMismatch))
}

func TestExtraCodeIsRecycledIntoShortfall(t *testing.T) {
	rec := record()
	rec.BookingItems[0].TicketCodes = codes("A1", 1, "A2", 1, "A3", 1)

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	tickets := b.Items[0].Tickets
	require.Len(t, tickets, 3)
	assert.Equal(t, "A3", tickets[2].Code)
	assert.Equal(t, "Child", tickets[2].PersonCategory.Name)
	assert.True(t, tickets[2].BasePrice.Equal(money.MustParse("20")))
	assert.Len(t, b.SyncErrorsOfType(model.SyncExtraTicketCodes), 1)
	assert.Len(t, b.SyncErrorsOfType(model.SyncMissingTicketCodes), 1)
	assert.Empty(t, b.SyncErrorsOfType(model.SyncUnusableTicketCode))
	assert.True(t, b.MatchesExternal, "warnings alone keep the booking matching")
}

func TestShortfallGetsPlaceholderCodes(t *testing.T) {
	rec := record()
	rec.BookingItems[0].TicketCodes = codes("A1", 1)

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	var got []string
	for _, tk := range b.Items[0].Tickets {
		got = append(got, tk.Code)
	}
	assert.Equal(t, []string{"A1", "BK-1-MISSING-1", "BK-1-MISSING-2"}, got)
	assert.Len(t, b.SyncErrorsOfType(model.SyncMissingTicketCodes), 2)
}

func TestUnpricedCategoryCodeIsDiscarded(t *testing.T) {
	rec := record()
	rec.BookingItems[0].TicketCodes = codes("A1", 1, "A2", 1, "C1", 2, "X9", 7)

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	assert.Len(t, b.Items[0].Tickets, 3)
	assert.Len(t, b.SyncErrorsOfType(model.SyncMismatchTicketCodes), 1)
	unusable := b.SyncErrorsOfType(model.SyncUnusableTicketCode)
	require.Len(t, unusable, 1)
	assert.Contains(t, unusable[0].Message, "X9")
	assert.Equal(t, model.SeverityWarning, unusable[0].Severity)
}

func TestUnknownPersonCategoryIsCreatedOnce(t *testing.T) {
	s := newStore()
	rec := record()
	rec.BookingItems[0].LineTotals = append(rec.BookingItems[0].LineTotals, ticketLine(3, 1, "15"))
	rec.BookingItems[0].TicketCodes = append(rec.BookingItems[0].TicketCodes, remote.TicketCode{Code: "S1", PersonCategoryIndex: 3})
	rec.Pricing.TotalAmount = money.MustParse("168")

	b, err := run(t, s, rec, importer.Options{})
	require.NoError(t, err)
	assert.Len(t, b.SyncErrorsOfType(model.SyncMissingPersonCategory), 1)
	assert.Equal(t, 3, s.PersonCategories())
	assert.True(t, b.MatchesExternal)

	b, err = run(t, s, rec, importer.Options{})
	require.NoError(t, err)
	assert.Empty(t, b.SyncErrorsOfType(model.SyncMissingPersonCategory))
	assert.Equal(t, 3, s.PersonCategories())
}

func TestFatalErrorsPersistNothing(t *testing.T) {
	cases := map[string]struct {
		mutate func(*remote.ReservationRecord)
		want   error
	}{
		"unknown customer": {
			mutate: func(r *remote.ReservationRecord) { r.CustomerID = 999 },
			want:   importer.ErrCustomerNotFound,
		},
		"unknown add-on": {
			mutate: func(r *remote.ReservationRecord) { r.AddOnSelections[0].AddOnID = 404 },
			want:   importer.ErrAddOnNotFound,
		},
		"missing product": {
			mutate: func(r *remote.ReservationRecord) { r.BookingItems[0].ProductID = 0 },
			want:   importer.ErrMalformedRecord,
		},
		"bad startsAt": {
			mutate: func(r *remote.ReservationRecord) { r.BookingItems[0].StartsAt = str("tomorrow") },
			want:   importer.ErrMalformedRecord,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			rec := record()
			// an unknown category would be created before the failure
			rec.BookingItems[0].LineTotals = append(rec.BookingItems[0].LineTotals, ticketLine(3, 1, "15"))
			tc.mutate(rec)

			_, err := run(t, s, rec, importer.Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, 0, s.Bookings())
			assert.Equal(t, 2, s.PersonCategories())
			assert.Equal(t, 0, s.Discounts())
		})
	}
}

func TestReimportReplacesBooking(t *testing.T) {
	s := newStore()
	rec := record()
	rec.BookingItems[0].TicketCodes = codes("A1", 1)

	first, err := run(t, s, rec, importer.Options{})
	require.NoError(t, err)
	second, err := run(t, s, rec, importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Bookings())
	assert.Equal(t, 1, s.Discounts(), "the discount created on first import is reused")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, len(first.SyncErrors), len(second.SyncErrors))
	assert.Equal(t, len(first.ScopeTickets()), len(second.ScopeTickets()))
	assert.Equal(t, len(first.Adjustments), len(second.Adjustments))
	ft, err := first.Totals.Get()
	require.NoError(t, err)
	st, err := second.Totals.Get()
	require.NoError(t, err)
	sameAmounts(t, ft, st)
	for i, tk := range second.ScopeTickets() {
		want, err := first.ScopeTickets()[i].Totals.Get()
		require.NoError(t, err)
		got, err := tk.Totals.Get()
		require.NoError(t, err)
		sameAmounts(t, want, got)
		assert.Equal(t, first.ScopeTickets()[i].Code, tk.Code)
	}
	for _, e := range second.SyncErrors {
		assert.Equal(t, second.ID, e.BookingID)
	}
	stored, _ := s.Booking(ident(981))
	assert.Same(t, second, stored)
}

func sameAmounts(t *testing.T, want, got model.Amounts) {
	t.Helper()
	pairs := map[string][2]decimal.Decimal{
		"base":    {want.BasePrice, got.BasePrice},
		"disc":    {want.Discounts, got.Discounts},
		"fees":    {want.Fees, got.Fees},
		"addons":  {want.AddOns, got.AddOns},
		"manual":  {want.ManualAdjustments, got.ManualAdjustments},
		"itemAdd": {want.ItemAddOns, got.ItemAddOns},
		"gross":   {want.Gross, got.Gross},
		"total":   {want.Total, got.Total},
	}
	for name, p := range pairs {
		assert.True(t, p[0].Equal(p[1]), "%s: %s != %s", name, p[0], p[1])
	}
}

func TestTotalMismatchIsRecorded(t *testing.T) {
	rec := record()
	rec.Pricing.TotalAmount = money.MustParse("150")

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)

	mismatch := b.SyncErrorsOfType(model.SyncTotalMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, model.SeverityError, mismatch[0].Severity)
	assert.True(t, b.Validated)
	assert.False(t, b.MatchesExternal)
}

func TestTotalWithinToleranceMatches(t *testing.T) {
	rec := record()
	rec.Pricing.TotalAmount = money.MustParse("149.000001")

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)
	assert.True(t, b.MatchesExternal)
}

func TestDiscountTotalMismatchIsAWarning(t *testing.T) {
	rec := record()
	rec.Pricing.PriceAdjustments = []remote.PriceAdjustment{{Type: remote.LineDiscount, Label: "SPRING", Amount: money.MustParse("-12")}}

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)
	require.Len(t, b.SyncErrorsOfType(model.SyncDiscountTotalMismatch), 1)
	assert.True(t, b.MatchesExternal)
}

func TestAddOnOptionWithoutPriceIsSkipped(t *testing.T) {
	rec := record()
	rec.AddOnSelections[0].Options[0].Price = nil
	rec.Pricing.TotalAmount = money.MustParse("144")

	b, err := run(t, newStore(), rec, importer.Options{})
	require.NoError(t, err)
	assert.Len(t, b.SyncErrorsOfType(model.SyncMissingAddOnOption), 1)
	assert.True(t, b.MatchesExternal)
}

func TestFeeKeywordsAreConfigurable(t *testing.T) {
	rec := record()
	rec.Pricing.TotalAmount = money.MustParse("149")

	b, err := run(t, newStore(), rec, importer.Options{FeeKeywords: []string{"goodwill"}})
	require.NoError(t, err)

	var fees, manual []string
	for _, a := range b.Adjustments {
		switch a.Kind {
		case model.KindFee:
			fees = append(fees, a.Description)
		case model.KindManualAdjustment:
			manual = append(manual, a.Description)
		}
	}
	assert.ElementsMatch(t, []string{"Booking", "Goodwill"}, fees)
	assert.Equal(t, []string{"Service Fee"}, manual)
}

func TestTicketSharesSumToBookingTotal(t *testing.T) {
	b, err := run(t, newStore(), record(), importer.Options{})
	require.NoError(t, err)

	sum := money.Zero
	for _, tk := range b.ScopeTickets() {
		a, err := tk.Totals.Get()
		require.NoError(t, err)
		sum = sum.Add(a.Gross)
	}
	bt, err := b.Totals.Get()
	require.NoError(t, err)
	assert.True(t, sum.Equal(bt.Gross), "tickets %s booking %s", sum, bt.Gross)
}
