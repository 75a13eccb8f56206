package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalIdentity is the (source system URI, source-native numeric id)
// pair used to deduplicate and idempotently re-import entities.
type ExternalIdentity struct {
	Source     string `json:"source"`      // URI of the source system
	ExternalID int64  `json:"external_id"` // id native to the source system
}

// String renders the identity as "source#id".
func (e ExternalIdentity) String() string {
	return fmt.Sprintf("%s#%d", e.Source, e.ExternalID)
}

// Booking is the root aggregate of an imported reservation.  It owns
// its booking items (and transitively their tickets), the booking-level
// adjustments and the sync errors recorded while reconciling it against
// the source system.
//
// Fields:
//  ID              – primary key, assigned by the store on insert.
//  Code            – booking code shown to customers.
//  Identity        – external identity of the source reservation.
//  Customer        – customer reference (shared, not owned).
//  Status          – status string copied from the source.
//  TaxAmount       – flat tax amount copied from the source.
//  Items           – owned booking items, in import order.
//  Adjustments     – booking-level discounts, add-ons, manual
//                    adjustments and fees.
//  SyncErrors      – append-only reconciliation anomalies.
//  MatchesExternal – true when validation found no mismatch.
//  Validated       – true once validation has run.
//  ImportedAt      – time the import was performed.
type Booking struct {
	ID              uint64
	Code            string
	Identity        ExternalIdentity
	Customer        *Customer
	Status          string
	TaxAmount       decimal.Decimal
	Items           []*BookingItem
	Adjustments     []*Adjustment
	SyncErrors      []*SyncError
	MatchesExternal bool
	Validated       bool
	ImportedAt      time.Time
	Totals          CachedTotals
}

// ScopeTickets returns all tickets of the booking in item order.
func (b *Booking) ScopeTickets() []*Ticket {
	var out []*Ticket
	for _, it := range b.Items {
		out = append(out, it.Tickets...)
	}
	return out
}

// Cached returns the booking's cached totals.
func (b *Booking) Cached() *CachedTotals { return &b.Totals }

// AddItem attaches a new booking item to the booking.
func (b *Booking) AddItem(it *BookingItem) {
	it.Booking = b
	b.Items = append(b.Items, it)
}

// AddAdjustment attaches a booking-level adjustment and sets its subject.
func (b *Booking) AddAdjustment(a *Adjustment) {
	a.Subject = Subject{Kind: SubjectBooking, Booking: b}
	b.Adjustments = append(b.Adjustments, a)
}

// Record appends a sync error or warning to the booking.
func (b *Booking) Record(typ SyncErrorType, format string, args ...interface{}) *SyncError {
	e := &SyncError{
		BookingID: b.ID,
		Type:      typ,
		Severity:  typ.Severity(),
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: time.Now().UTC(),
	}
	b.SyncErrors = append(b.SyncErrors, e)
	return e
}

// SyncErrorsOfType returns the recorded sync errors of the given type.
func (b *Booking) SyncErrorsOfType(typ SyncErrorType) []*SyncError {
	var out []*SyncError
	for _, e := range b.SyncErrors {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// BookingItem is one line of a booking, referencing a single event
// (availability) and owning the tickets issued for it plus any
// item-level add-ons.
type BookingItem struct {
	ID         uint64
	Booking    *Booking
	ExternalID int64
	Event      *Event
	Tickets    []*Ticket // owned; ticket order is preserved
	AddOns     []*Adjustment
	Totals     CachedTotals
}

// ScopeTickets returns the item's tickets.
func (it *BookingItem) ScopeTickets() []*Ticket { return it.Tickets }

// Cached returns the item's cached totals.
func (it *BookingItem) Cached() *CachedTotals { return &it.Totals }

// AddTicket attaches a ticket to the item.
func (it *BookingItem) AddTicket(t *Ticket) {
	t.Item = it
	it.Tickets = append(it.Tickets, t)
}

// AddAddOn attaches an item-level add-on adjustment and sets its subject.
func (it *BookingItem) AddAddOn(a *Adjustment) {
	a.Subject = Subject{Kind: SubjectBookingItem, Item: it}
	it.AddOns = append(it.AddOns, a)
}

// Ticket is a single admission issued within a booking item.  Its
// allocations are the mapped adjustments produced by the transform.
type Ticket struct {
	ID             uint64
	Item           *BookingItem
	Code           string
	PersonCategory *PersonCategory
	BasePrice      decimal.Decimal
	Mapped         []*MappedAdjustment
	Totals         CachedTotals
}

// ScopeTickets returns the ticket itself so that a Ticket is a
// Weighable of one.
func (t *Ticket) ScopeTickets() []*Ticket { return []*Ticket{t} }

// Cached returns the ticket's cached totals.
func (t *Ticket) Cached() *CachedTotals { return &t.Totals }

// GrossRevenue is the weight a ticket carries under the gross revenue
// policy: its base price.
func (t *Ticket) GrossRevenue() decimal.Decimal { return t.BasePrice }
