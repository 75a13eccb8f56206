// Package transform regenerates the ticket-level allocations (mapped
// adjustments) of a booking.  A run always has two phases:
//
//	Prepare – drop every mapped adjustment on every ticket and mark all
//	          cached totals as uncomputed.
//	Apply   – weigh each source adjustment across the tickets of its
//	          scope and attach one mapped adjustment per (adjustment,
//	          ticket) pair, zero shares included.
//
// The transform does not touch cached totals beyond invalidating them;
// the totals package must run afterwards before totals are read.
package transform

import (
	"errors"
	"fmt"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/weighting"
)

// ErrMalformedAdjustment is returned when an adjustment cannot be
// weighed: an unknown kind, a discount without its reference, or a
// subject that does not belong to the booking being transformed.
var ErrMalformedAdjustment = errors.New("malformed adjustment")

// bookingKinds is the fixed order in which booking-level adjustments
// are applied.
var bookingKinds = []model.AdjustmentKind{
	model.KindDiscount,
	model.KindAddOn,
	model.KindManualAdjustment,
	model.KindFee,
}

// Result summarizes one transform run.
type Result struct {
	Dropped     int // mapped adjustments removed by Prepare
	Adjustments int // source adjustments weighed
	Mapped      int // mapped adjustments created
}

// TicketAdjustmentTransform prorates booking and item adjustments onto
// tickets.  It holds no state between runs.
type TicketAdjustmentTransform struct{}

// New returns a TicketAdjustmentTransform.
func New() *TicketAdjustmentTransform { return &TicketAdjustmentTransform{} }

// Run executes Prepare followed by Apply on b.  On error the booking is
// left without valid allocations and the caller must abort the
// surrounding transaction.
func (tr *TicketAdjustmentTransform) Run(b *model.Booking) (Result, error) {
	dropped := tr.Prepare(b)
	res, err := tr.Apply(b)
	res.Dropped = dropped
	return res, err
}

// Prepare removes all previously generated mapped adjustments from the
// booking's tickets and invalidates every cached total.  It is
// idempotent and returns the number of rows removed.
func (tr *TicketAdjustmentTransform) Prepare(b *model.Booking) int {
	dropped := 0
	for _, it := range b.Items {
		for _, t := range it.Tickets {
			dropped += len(t.Mapped)
			t.Mapped = nil
			t.Totals.Invalidate()
		}
		it.Totals.Invalidate()
	}
	b.Totals.Invalidate()
	return dropped
}

// Apply weighs every adjustment attached to the booking: booking-level
// adjustments in kind order (discounts, add-ons, manual adjustments,
// fees) and then item add-ons in item order.
func (tr *TicketAdjustmentTransform) Apply(b *model.Booking) (Result, error) {
	var res Result
	for _, adj := range b.Adjustments {
		if !knownKind(adj.Kind) {
			return res, fmt.Errorf("%w: booking %s: unknown kind %q", ErrMalformedAdjustment, b.Code, adj.Kind)
		}
		if adj.Subject.Kind != model.SubjectBooking || adj.Subject.Booking != b {
			return res, fmt.Errorf("%w: booking %s: %s adjustment attached to another subject", ErrMalformedAdjustment, b.Code, adj.Kind)
		}
	}
	for _, kind := range bookingKinds {
		for _, adj := range b.Adjustments {
			if adj.Kind != kind {
				continue
			}
			n, err := tr.apply(adj)
			if err != nil {
				return res, err
			}
			res.Adjustments++
			res.Mapped += n
		}
	}
	for _, it := range b.Items {
		for _, adj := range it.AddOns {
			if adj.Kind != model.KindAddOn || adj.Subject.Kind != model.SubjectBookingItem || adj.Subject.Item != it {
				return res, fmt.Errorf("%w: booking %s item %d: %s is not an item add-on", ErrMalformedAdjustment, b.Code, it.ExternalID, adj.Kind)
			}
			n, err := tr.apply(adj)
			if err != nil {
				return res, err
			}
			res.Adjustments++
			res.Mapped += n
		}
	}
	return res, nil
}

// apply weighs a single adjustment and attaches the resulting shares.
func (tr *TicketAdjustmentTransform) apply(adj *model.Adjustment) (int, error) {
	scope, err := adj.Subject.Scope()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedAdjustment, err)
	}
	policy, applies, err := rule(adj)
	if err != nil {
		return 0, err
	}
	tickets := scope.ScopeTickets()
	shares := weighting.Distribute(policy, adj.Amount, scope, applies)
	for i, t := range tickets {
		t.Mapped = append(t.Mapped, &model.MappedAdjustment{
			Source: adj,
			Ticket: t,
			Amount: shares[i],
		})
	}
	return len(tickets), nil
}

// rule selects the weighting policy and applicability predicate for an
// adjustment.  Discounts use their configured policy and eligibility
// sets; all other kinds are weighed by gross revenue and apply to every
// ticket in scope.
func rule(adj *model.Adjustment) (weighting.Policy, weighting.Predicate, error) {
	switch adj.Kind {
	case model.KindDiscount:
		if adj.Discount == nil {
			return 0, nil, fmt.Errorf("%w: discount adjustment without discount reference", ErrMalformedAdjustment)
		}
		return weighting.ForDiscount(adj.Discount.Policy), adj.Discount.Applies, nil
	case model.KindAddOn, model.KindManualAdjustment, model.KindFee:
		return weighting.PolicyGrossRevenue, weighting.Everyone, nil
	}
	return 0, nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedAdjustment, adj.Kind)
}

func knownKind(k model.AdjustmentKind) bool {
	for _, known := range bookingKinds {
		if k == known {
			return true
		}
	}
	return false
}
