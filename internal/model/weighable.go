package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrTotalsNotComputed is returned when cached totals are read before
// cache population has run for the weighable.  Callers must treat it as
// "not yet computed" and never substitute zero.
var ErrTotalsNotComputed = errors.New("cached totals not computed")

// Weighable is implemented by every priceable aggregate: a Ticket, a
// BookingItem and a Booking.  ScopeTickets returns the constituent tickets
// in deterministic order (item order, then ticket order); for a Ticket
// it returns the ticket itself.  Cached exposes the eight roll-up
// fields maintained by cache population.
type Weighable interface {
	ScopeTickets() []*Ticket
	Cached() *CachedTotals
}

// Amounts is the set of eight monetary roll-up fields of a weighable.
//
// Fields:
//  BasePrice         – sum of ticket base prices.
//  Discounts         – sum of prorated discounts (negative).
//  Fees              – sum of prorated fees.
//  AddOns            – sum of prorated booking-level add-ons.
//  ManualAdjustments – sum of prorated manual adjustments.
//  ItemAddOns        – sum of prorated item-level add-ons.
//  Gross             – BasePrice + Discounts + Fees + AddOns +
//                      ManualAdjustments + ItemAddOns.
//  Total             – max(Gross, 0).
type Amounts struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	Discounts         decimal.Decimal `json:"discounts_amount"`
	Fees              decimal.Decimal `json:"fees_amount"`
	AddOns            decimal.Decimal `json:"add_ons_amount"`
	ManualAdjustments decimal.Decimal `json:"manual_adjustments_amount"`
	ItemAddOns        decimal.Decimal `json:"item_add_ons_amount"`
	Gross             decimal.Decimal `json:"gross_amount"`
	Total             decimal.Decimal `json:"total_amount"`
}

// CachedTotals stores Amounts together with an explicit computed flag.
// The zero value is uncomputed.
type CachedTotals struct {
	amounts  Amounts
	computed bool
}

// Get returns the cached amounts, or ErrTotalsNotComputed when cache
// population has not run since the last structural change.
func (c *CachedTotals) Get() (Amounts, error) {
	if !c.computed {
		return Amounts{}, ErrTotalsNotComputed
	}
	return c.amounts, nil
}

// Computed reports whether the cached amounts may be read.
func (c *CachedTotals) Computed() bool { return c.computed }

// Set stores freshly computed amounts.
func (c *CachedTotals) Set(a Amounts) {
	c.amounts = a
	c.computed = true
}

// Invalidate marks the totals as uncomputed.  It is called whenever the
// ticket-level allocations beneath the weighable are regenerated.
func (c *CachedTotals) Invalidate() {
	c.amounts = Amounts{}
	c.computed = false
}
