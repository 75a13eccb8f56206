package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AdjustmentKind tags the variant of an Adjustment.
type AdjustmentKind string

const (
	KindDiscount         AdjustmentKind = "DISCOUNT"
	KindAddOn            AdjustmentKind = "ADD_ON"
	KindManualAdjustment AdjustmentKind = "MANUAL_ADJUSTMENT"
	KindFee              AdjustmentKind = "FEE"
)

// SubjectKind tags what an adjustment is attached to.
type SubjectKind string

const (
	SubjectBooking     SubjectKind = "BOOKING"
	SubjectBookingItem SubjectKind = "BOOKING_ITEM"
)

// Subject is the weighable an adjustment is attached to.  Exactly one
// of Booking or Item is set, according to Kind.
type Subject struct {
	Kind    SubjectKind
	Booking *Booking
	Item    *BookingItem
}

// Scope returns the weighable whose tickets share the adjustment.
func (s Subject) Scope() (Weighable, error) {
	switch s.Kind {
	case SubjectBooking:
		if s.Booking != nil {
			return s.Booking, nil
		}
	case SubjectBookingItem:
		if s.Item != nil {
			return s.Item, nil
		}
	}
	return nil, fmt.Errorf("adjustment subject %q has no target", s.Kind)
}

// Adjustment is a closed tagged union over the four adjustment kinds.
// Kind selects which payload fields are meaningful:
//
//	DISCOUNT          – Discount
//	ADD_ON            – AddOn, Selection
//	MANUAL_ADJUSTMENT – Description
//	FEE               – Description
//
// Amount is signed: discounts are negative, fees positive.
type Adjustment struct {
	ID          uint64
	Kind        AdjustmentKind
	Subject     Subject
	Amount      decimal.Decimal
	Discount    *Discount
	AddOn       *AddOn
	Selection   string
	Description string
}

// NewDiscount builds a discount adjustment.
func NewDiscount(d *Discount, amount decimal.Decimal) *Adjustment {
	return &Adjustment{Kind: KindDiscount, Discount: d, Amount: amount, Description: d.Code}
}

// NewAddOn builds an add-on adjustment for the chosen option.
func NewAddOn(a *AddOn, selection string, amount decimal.Decimal) *Adjustment {
	return &Adjustment{Kind: KindAddOn, AddOn: a, Selection: selection, Amount: amount, Description: a.Name}
}

// NewManualAdjustment builds a manual adjustment.
func NewManualAdjustment(description string, amount decimal.Decimal) *Adjustment {
	return &Adjustment{Kind: KindManualAdjustment, Description: description, Amount: amount}
}

// NewFee builds a fee adjustment.
func NewFee(description string, amount decimal.Decimal) *Adjustment {
	return &Adjustment{Kind: KindFee, Description: description, Amount: amount}
}

// IsItemAddOn reports whether the adjustment is an add-on attached to a
// booking item.  Item add-ons roll up into their own cached field.
func (a *Adjustment) IsItemAddOn() bool {
	return a.Kind == KindAddOn && a.Subject.Kind == SubjectBookingItem
}

// MappedAdjustment is the ticket-level share of a source adjustment.
// Mapped adjustments are regenerated on every transform run and never
// edited directly.
type MappedAdjustment struct {
	ID     uint64
	Source *Adjustment
	Ticket *Ticket
	Amount decimal.Decimal
}
