// Package weighting implements the closed set of policies used to
// prorate a single monetary adjustment across the tickets of a
// weighable scope.  Every function here is pure: it reads the scope and
// returns a share without touching any state.
package weighting

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
)

// Predicate decides whether a ticket is eligible for a non-zero share.
type Predicate func(t *model.Ticket) bool

// Everyone is the predicate of adjustments that apply to every ticket
// in their scope.
func Everyone(*model.Ticket) bool { return true }

// Function computes the share of amount that lands on ticket when the
// amount is weighed across scope.
type Function func(amount decimal.Decimal, scope model.Weighable, ticket *model.Ticket, applies Predicate) decimal.Decimal

// basis is what every share of one scope depends on: the effective
// predicate and the applicable count and gross revenue.  It is computed
// once per scope so weighing n tickets stays linear.
type basis struct {
	applies Predicate
	count   int64
	gross   decimal.Decimal
}

// newBasis resolves the effective predicate for tickets: applies itself,
// or Everyone when no ticket satisfies it.  The fallback keeps an
// adjustment from evaporating when its target category is absent from
// the booking.
func newBasis(tickets []*model.Ticket, applies Predicate) basis {
	if applies == nil {
		applies = Everyone
	}
	b := basis{applies: applies, gross: money.Zero}
	b.tally(tickets)
	if b.count == 0 {
		b = basis{applies: Everyone, gross: money.Zero}
		b.tally(tickets)
	}
	return b
}

func (b *basis) tally(tickets []*model.Ticket) {
	for _, t := range tickets {
		if b.applies(t) {
			b.count++
			b.gross = b.gross.Add(t.GrossRevenue())
		}
	}
}

func (b basis) byCount(amount decimal.Decimal, ticket *model.Ticket) decimal.Decimal {
	if b.count == 0 || !b.applies(ticket) {
		return money.Zero
	}
	return money.Div(amount, decimal.NewFromInt(b.count))
}

func (b basis) byGross(amount decimal.Decimal, ticket *model.Ticket) decimal.Decimal {
	if b.gross.IsZero() {
		return b.byCount(amount, ticket)
	}
	if !b.applies(ticket) {
		return money.Zero
	}
	return money.Div(amount.Mul(ticket.GrossRevenue()), b.gross)
}

func (b basis) share(p Policy, amount decimal.Decimal, ticket *model.Ticket) decimal.Decimal {
	if p == PolicyTicketCount {
		return b.byCount(amount, ticket)
	}
	return b.byGross(amount, ticket)
}

// ByApplicableTicketCount splits amount evenly across the applicable
// tickets of scope.  Inapplicable tickets get zero.
func ByApplicableTicketCount(amount decimal.Decimal, scope model.Weighable, ticket *model.Ticket, applies Predicate) decimal.Decimal {
	return newBasis(scope.ScopeTickets(), applies).byCount(amount, ticket)
}

// ByApplicableGrossRevenue splits amount across the applicable tickets
// of scope in proportion to their gross revenue.  When the applicable
// gross revenue sums to zero it falls back to ByApplicableTicketCount.
func ByApplicableGrossRevenue(amount decimal.Decimal, scope model.Weighable, ticket *model.Ticket, applies Predicate) decimal.Decimal {
	return newBasis(scope.ScopeTickets(), applies).byGross(amount, ticket)
}

// Policy names a weighting function.
type Policy int

const (
	// PolicyTicketCount selects ByApplicableTicketCount.
	PolicyTicketCount Policy = iota
	// PolicyGrossRevenue selects ByApplicableGrossRevenue.
	PolicyGrossRevenue
)

// Function returns the weighting function the policy names.
func (p Policy) Function() Function {
	if p == PolicyTicketCount {
		return ByApplicableTicketCount
	}
	return ByApplicableGrossRevenue
}

func (p Policy) String() string {
	switch p {
	case PolicyTicketCount:
		return "ticket_count"
	case PolicyGrossRevenue:
		return "gross_revenue"
	}
	return "unknown"
}

// ForDiscount maps a discount's configured policy onto a weighting
// policy.  Per-person discounts are split per ticket; everything else is
// split by gross revenue.
func ForDiscount(p model.DiscountPolicy) Policy {
	if p == model.DiscountPerPerson {
		return PolicyTicketCount
	}
	return PolicyGrossRevenue
}

// Distribute weighs amount across every ticket of scope and returns the
// shares in ScopeTickets order.  Shares are computed at money.Scale;
// the division residual (amount minus the sum of shares) is added to
// the last ticket holding a non-zero share so the shares always sum to
// amount exactly.
func Distribute(p Policy, amount decimal.Decimal, scope model.Weighable, applies Predicate) []decimal.Decimal {
	tickets := scope.ScopeTickets()
	b := newBasis(tickets, applies)
	shares := make([]decimal.Decimal, len(tickets))
	last := -1
	sum := money.Zero
	for i, t := range tickets {
		shares[i] = b.share(p, amount, t)
		sum = sum.Add(shares[i])
		if !shares[i].IsZero() {
			last = i
		}
	}
	if last >= 0 {
		shares[last] = shares[last].Add(amount.Sub(sum))
	}
	return shares
}
