package totals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
	"github.com/iliyamo/booking-reconciliation/internal/transform"
)

func build() *model.Booking {
	adult := &model.PersonCategory{ID: 1, Name: "Adult"}
	product := &model.Product{ID: 7}
	b := &model.Booking{Code: "BK"}
	item1 := &model.BookingItem{ExternalID: 1, Event: &model.Event{Product: product}}
	item2 := &model.BookingItem{ExternalID: 2, Event: &model.Event{Product: product}}
	b.AddItem(item1)
	b.AddItem(item2)
	for _, p := range []string{"19.99", "19.99", "7.50"} {
		item1.AddTicket(&model.Ticket{PersonCategory: adult, BasePrice: money.MustParse(p)})
	}
	item2.AddTicket(&model.Ticket{PersonCategory: adult, BasePrice: money.MustParse("42")})

	b.AddAdjustment(model.NewDiscount(&model.Discount{Code: "TEN", Policy: model.DiscountPerPerson}, money.MustParse("-10")))
	b.AddAdjustment(model.NewAddOn(&model.AddOn{Name: "Photos"}, "Digital", money.MustParse("12")))
	b.AddAdjustment(model.NewManualAdjustment("Goodwill", money.MustParse("-3.33")))
	b.AddAdjustment(model.NewFee("Card fee", money.MustParse("2.71")))
	item1.AddAddOn(model.NewAddOn(&model.AddOn{Name: "Drinks"}, "Wine", money.MustParse("9")))
	return b
}

func TestPopulateFillsEveryWeighable(t *testing.T) {
	b := build()
	_, err := transform.New().Run(b)
	require.NoError(t, err)

	_, err = b.Totals.Get()
	require.True(t, errors.Is(err, model.ErrTotalsNotComputed))

	Populate(b)

	got, err := b.Totals.Get()
	require.NoError(t, err)
	assert.True(t, got.BasePrice.Equal(money.MustParse("89.48")))
	assert.True(t, got.Discounts.Equal(money.MustParse("-10")))
	assert.True(t, got.AddOns.Equal(money.MustParse("12")))
	assert.True(t, got.ManualAdjustments.Equal(money.MustParse("-3.33")))
	assert.True(t, got.Fees.Equal(money.MustParse("2.71")))
	assert.True(t, got.ItemAddOns.Equal(money.MustParse("9")))
	assert.True(t, got.Gross.Equal(money.MustParse("99.86")))
	assert.True(t, got.Total.Equal(got.Gross))

	for _, it := range b.Items {
		_, err := it.Totals.Get()
		require.NoError(t, err)
		for _, tk := range it.Tickets {
			_, err := tk.Totals.Get()
			require.NoError(t, err)
		}
	}
	item2, _ := b.Items[1].Totals.Get()
	assert.True(t, item2.ItemAddOns.IsZero())
}

func TestTicketGrossSumsToBookingGross(t *testing.T) {
	b := build()
	_, err := transform.New().Run(b)
	require.NoError(t, err)
	Populate(b)

	ticketSum := money.Zero
	itemSum := money.Zero
	for _, it := range b.Items {
		a, err := it.Totals.Get()
		require.NoError(t, err)
		itemSum = itemSum.Add(a.Gross)
		for _, tk := range it.Tickets {
			ta, err := tk.Totals.Get()
			require.NoError(t, err)
			ticketSum = ticketSum.Add(ta.Gross)
			assert.True(t, ta.Gross.Equal(money.Sum(ta.BasePrice, ta.Discounts, ta.Fees, ta.AddOns, ta.ManualAdjustments, ta.ItemAddOns)))
		}
	}
	bt, err := b.Totals.Get()
	require.NoError(t, err)
	assert.True(t, ticketSum.Equal(bt.Gross), "tickets %s booking %s", ticketSum, bt.Gross)
	assert.True(t, itemSum.Equal(bt.Gross))
}

// A $10 ticket carrying a $15 discount has gross -5 and total 0.
func TestTicketTotalIsClampedAtZero(t *testing.T) {
	b := &model.Booking{Code: "NEG"}
	it := &model.BookingItem{ExternalID: 1}
	b.AddItem(it)
	tk := &model.Ticket{BasePrice: money.MustParse("10")}
	it.AddTicket(tk)
	b.AddAdjustment(model.NewDiscount(&model.Discount{Code: "BIG"}, money.MustParse("-15")))

	_, err := transform.New().Run(b)
	require.NoError(t, err)
	Populate(b)

	got, err := tk.Totals.Get()
	require.NoError(t, err)
	assert.True(t, got.Gross.Equal(money.MustParse("-5")))
	assert.True(t, got.Total.IsZero())
}

func TestComputeDoesNotWriteCache(t *testing.T) {
	b := build()
	_, err := transform.New().Run(b)
	require.NoError(t, err)

	a := Compute(b)
	assert.True(t, a.Gross.Equal(money.MustParse("99.86")))
	assert.False(t, b.Totals.Computed())
}

func TestRecomputeRoundsHalfUpAtScale(t *testing.T) {
	tk := &model.Ticket{BasePrice: money.MustParse("1.0000000000000000000000000000005")}
	got := Recompute(tk)
	assert.Equal(t, "1.000000000000000000000000000001", got.BasePrice.String())
	assert.True(t, tk.Totals.Computed())
}
