// Package totals populates the eight cached monetary fields of every
// weighable in a booking.  Population must run after each transform;
// until it does, cached totals read as model.ErrTotalsNotComputed.
package totals

import (
	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
)

// Compute derives the amounts of w from the base prices and mapped
// adjustments of its tickets without writing anything.  Values are not
// rounded.
func Compute(w model.Weighable) model.Amounts {
	var a model.Amounts
	for _, t := range w.ScopeTickets() {
		a.BasePrice = a.BasePrice.Add(t.BasePrice)
		for _, m := range t.Mapped {
			switch src := m.Source; {
			case src.Kind == model.KindDiscount:
				a.Discounts = a.Discounts.Add(m.Amount)
			case src.Kind == model.KindFee:
				a.Fees = a.Fees.Add(m.Amount)
			case src.Kind == model.KindManualAdjustment:
				a.ManualAdjustments = a.ManualAdjustments.Add(m.Amount)
			case src.IsItemAddOn():
				a.ItemAddOns = a.ItemAddOns.Add(m.Amount)
			case src.Kind == model.KindAddOn:
				a.AddOns = a.AddOns.Add(m.Amount)
			}
		}
	}
	a.Gross = money.Sum(a.BasePrice, a.Discounts, a.Fees, a.AddOns, a.ManualAdjustments, a.ItemAddOns)
	a.Total = money.Max(a.Gross, money.Zero)
	return a
}

// Recompute computes the amounts of w, rounds each field half-up to
// money.Scale and stores them in w's cache.
func Recompute(w model.Weighable) model.Amounts {
	a := round(Compute(w))
	w.Cached().Set(a)
	return a
}

// Populate recomputes the cache of every ticket, every booking item and
// the booking itself.
func Populate(b *model.Booking) {
	for _, it := range b.Items {
		for _, t := range it.Tickets {
			Recompute(t)
		}
		Recompute(it)
	}
	Recompute(b)
}

func round(a model.Amounts) model.Amounts {
	return model.Amounts{
		BasePrice:         money.Round(a.BasePrice),
		Discounts:         money.Round(a.Discounts),
		Fees:              money.Round(a.Fees),
		AddOns:            money.Round(a.AddOns),
		ManualAdjustments: money.Round(a.ManualAdjustments),
		ItemAddOns:        money.Round(a.ItemAddOns),
		Gross:             money.Round(a.Gross),
		Total:             money.Round(a.Total),
	}
}
