package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
)

type fixture struct {
	booking     *model.Booking
	adultP1     *model.Ticket
	childP1     *model.Ticket
	adultP2     *model.Ticket
	childOnlyP1 *model.Adjustment
	adultsAll   *model.Adjustment
	fee         *model.Adjustment
	itemAddOn   *model.Adjustment
}

func newFixture() *fixture {
	adult := &model.PersonCategory{ID: 1, Name: "Adult"}
	child := &model.PersonCategory{ID: 2, Name: "Child"}
	p1 := &model.Product{ID: 10, Name: "Harbour cruise"}
	p2 := &model.Product{ID: 20, Name: "Sunset cruise"}

	f := &fixture{booking: &model.Booking{Code: "BK-1"}}
	item1 := &model.BookingItem{ExternalID: 1, Event: &model.Event{ID: 100, Product: p1}}
	item2 := &model.BookingItem{ExternalID: 2, Event: &model.Event{ID: 200, Product: p2}}
	f.booking.AddItem(item1)
	f.booking.AddItem(item2)

	f.adultP1 = &model.Ticket{Code: "T1", PersonCategory: adult, BasePrice: money.MustParse("30")}
	f.childP1 = &model.Ticket{Code: "T2", PersonCategory: child, BasePrice: money.MustParse("10")}
	f.adultP2 = &model.Ticket{Code: "T3", PersonCategory: adult, BasePrice: money.MustParse("60")}
	item1.AddTicket(f.adultP1)
	item1.AddTicket(f.childP1)
	item2.AddTicket(f.adultP2)

	f.childOnlyP1 = model.NewDiscount(&model.Discount{
		Code:              "KIDS",
		Policy:            model.DiscountPerPerson,
		PersonCategoryIDs: map[uint64]bool{child.ID: true},
		ProductIDs:        map[uint64]bool{p1.ID: true},
	}, money.MustParse("-4"))
	f.adultsAll = model.NewDiscount(&model.Discount{
		Code:              "GROWNUPS",
		Policy:            model.DiscountPerBooking,
		PersonCategoryIDs: map[uint64]bool{adult.ID: true},
		ProductIDs:        map[uint64]bool{p1.ID: true, p2.ID: true},
	}, money.MustParse("-9"))
	f.fee = model.NewFee("Booking fee", money.MustParse("10"))
	f.itemAddOn = model.NewAddOn(&model.AddOn{Name: "Lunch", PriceBasis: model.PricePerItem}, "Fish", money.MustParse("5"))

	f.booking.AddAdjustment(f.fee)
	f.booking.AddAdjustment(f.childOnlyP1)
	f.booking.AddAdjustment(f.adultsAll)
	item2.AddAddOn(f.itemAddOn)
	return f
}

func mappedFor(t *model.Ticket, src *model.Adjustment) []*model.MappedAdjustment {
	var out []*model.MappedAdjustment
	for _, m := range t.Mapped {
		if m.Source == src {
			out = append(out, m)
		}
	}
	return out
}

func TestRunAllocatesEveryAdjustment(t *testing.T) {
	f := newFixture()

	res, err := New().Run(f.booking)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Dropped)
	assert.Equal(t, 4, res.Adjustments)
	assert.Equal(t, 10, res.Mapped)

	cases := []struct {
		name   string
		ticket *model.Ticket
		src    *model.Adjustment
		want   string
	}{
		{"per-person discount skips adult", f.adultP1, f.childOnlyP1, "0"},
		{"per-person discount hits child", f.childP1, f.childOnlyP1, "-4"},
		{"per-person discount skips other product", f.adultP2, f.childOnlyP1, "0"},
		{"gross discount by adult revenue p1", f.adultP1, f.adultsAll, "-3"},
		{"gross discount skips child", f.childP1, f.adultsAll, "0"},
		{"gross discount by adult revenue p2", f.adultP2, f.adultsAll, "-6"},
		{"fee by gross p1 adult", f.adultP1, f.fee, "3"},
		{"fee by gross p1 child", f.childP1, f.fee, "1"},
		{"fee by gross p2 adult", f.adultP2, f.fee, "6"},
		{"item add-on stays on its item", f.adultP2, f.itemAddOn, "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := mappedFor(tc.ticket, tc.src)
			require.Len(t, rows, 1)
			assert.True(t, rows[0].Amount.Equal(money.MustParse(tc.want)), "got %s", rows[0].Amount)
			assert.Same(t, tc.ticket, rows[0].Ticket)
		})
	}
	assert.Empty(t, mappedFor(f.adultP1, f.itemAddOn))
}

func TestRunAppliesKindsInFixedOrder(t *testing.T) {
	f := newFixture()
	_, err := New().Run(f.booking)
	require.NoError(t, err)

	var kinds []model.AdjustmentKind
	for _, m := range f.adultP2.Mapped {
		kinds = append(kinds, m.Source.Kind)
	}
	assert.Equal(t, []model.AdjustmentKind{
		model.KindDiscount, model.KindDiscount, model.KindFee, model.KindAddOn,
	}, kinds)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture()
	tr := New()
	first, err := tr.Run(f.booking)
	require.NoError(t, err)

	second, err := tr.Run(f.booking)
	require.NoError(t, err)
	assert.Equal(t, first.Mapped, second.Dropped)
	assert.Equal(t, first.Mapped, second.Mapped)
	assert.Len(t, f.adultP1.Mapped, 3)
}

func TestPrepareInvalidatesCachedTotals(t *testing.T) {
	f := newFixture()
	f.adultP1.Totals.Set(model.Amounts{})
	f.booking.Items[0].Totals.Set(model.Amounts{})
	f.booking.Totals.Set(model.Amounts{})

	assert.Equal(t, 0, New().Prepare(f.booking))
	assert.False(t, f.adultP1.Totals.Computed())
	assert.False(t, f.booking.Items[0].Totals.Computed())
	assert.False(t, f.booking.Totals.Computed())
}

func TestPrepareOnEmptyBooking(t *testing.T) {
	b := &model.Booking{}
	res, err := New().Run(b)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestApplyRejectsMalformedAdjustments(t *testing.T) {
	t.Run("discount without reference", func(t *testing.T) {
		f := newFixture()
		f.booking.AddAdjustment(&model.Adjustment{Kind: model.KindDiscount, Amount: money.MustParse("-1")})
		_, err := New().Run(f.booking)
		assert.True(t, errors.Is(err, ErrMalformedAdjustment))
	})
	t.Run("unknown kind", func(t *testing.T) {
		f := newFixture()
		f.booking.AddAdjustment(&model.Adjustment{Kind: "VOUCHER", Amount: money.MustParse("-1")})
		_, err := New().Run(f.booking)
		assert.True(t, errors.Is(err, ErrMalformedAdjustment))
	})
	t.Run("foreign subject", func(t *testing.T) {
		f := newFixture()
		other := &model.Booking{Code: "OTHER"}
		adj := model.NewFee("x", money.MustParse("1"))
		other.AddAdjustment(adj)
		f.booking.Adjustments = append(f.booking.Adjustments, adj)
		_, err := New().Run(f.booking)
		assert.True(t, errors.Is(err, ErrMalformedAdjustment))
	})
	t.Run("item adjustment that is not an add-on", func(t *testing.T) {
		f := newFixture()
		f.booking.Items[0].AddAddOn(model.NewFee("x", money.MustParse("1")))
		_, err := New().Run(f.booking)
		assert.True(t, errors.Is(err, ErrMalformedAdjustment))
	})
}
