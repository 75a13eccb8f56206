// Package remote defines the already-deserialized shape of a reservation
// fetched from a third-party reservation system.  The engine consumes
// these records read-only; fetching and decoding them belongs to the
// caller.
package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Line total type codes used by the source system.
const (
	LineTicketPrice      = 1101 // ticket price per person category
	LineDiscount         = 1500 // discount / promotion
	LineManualAdjustment = 2000 // manual adjustment, or fee when labelled as one
	LineManualCorrection = 2100 // manual adjustment, or fee when labelled as one
	LineFee              = 8300 // fee
)

// ErrMalformed is wrapped by Validate when a record cannot be imported.
var ErrMalformed = errors.New("malformed reservation record")

// ReservationRecord is one reservation as reported by the source.
type ReservationRecord struct {
	ID              int64               `json:"id"`
	Code            string              `json:"code"`
	Status          string              `json:"status"`
	CustomerID      int64               `json:"customerId"`
	TaxAmount       decimal.Decimal     `json:"taxAmount"`
	LineTotals      []LineTotal         `json:"lineTotals"`
	AddOnSelections []AddOnSelection    `json:"addonSelections"`
	BookingItems    []BookingItemRecord `json:"bookingItems"`
	Pricing         PricingRecord       `json:"pricing"`
}

// LineTotal is a priced line of a reservation or of a booking item.
// PersonCategoryIndex is set on ticket price lines; PromotionID on
// discount lines when the source knows the promotion.
type LineTotal struct {
	Type                int             `json:"type"`
	Label               string          `json:"label"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	AddOnID             *int64          `json:"addonId,omitempty"`
	PromotionID         *int64          `json:"promotionId,omitempty"`
	PersonCategoryIndex *int64          `json:"personCategoryIndex,omitempty"`
}

// AddOnSelection records the options a customer picked for an add-on.
type AddOnSelection struct {
	AddOnID int64         `json:"addonId"`
	Options []AddOnOption `json:"options"`
}

// AddOnOption is one selectable option of an add-on.  Label is nil when
// the option was offered but not chosen.
type AddOnOption struct {
	Label *string          `json:"label"`
	Price *decimal.Decimal `json:"price"`
}

// BookingItemRecord is one booked availability within a reservation.
type BookingItemRecord struct {
	AvailabilityID  int64            `json:"availabilityId"`
	BookingItemID   int64            `json:"bookingItemId"`
	ProductID       int64            `json:"productId"`
	ProductName     string           `json:"productName"`
	EventTitle      string           `json:"eventTitle"`
	StartsAt        *string          `json:"startsAt,omitempty"`
	LineTotals      []LineTotal      `json:"lineTotals"`
	TicketCodes     []TicketCode     `json:"ticketCodes"`
	AddOnSelections []AddOnSelection `json:"addonSelections"`
}

// TicketCode is a per-ticket code issued by the source, tagged with
// the person category it was issued for.
type TicketCode struct {
	Code                string `json:"code"`
	PersonCategoryIndex int64  `json:"personCategoryIndex"`
}

// PricingRecord is the source system's own view of the booking's price.
type PricingRecord struct {
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	TaxAmount        decimal.Decimal   `json:"taxAmount"`
	PriceAdjustments []PriceAdjustment `json:"priceAdjustments"`
}

// PriceAdjustment is an adjustment line of the pricing record.
type PriceAdjustment struct {
	Amount      decimal.Decimal `json:"amount"`
	Label       string          `json:"label"`
	PromotionID *int64          `json:"promotionId,omitempty"`
	Type        int             `json:"type"`
}

// Validate checks the structural preconditions of a record: an id, a
// customer, a product per booking item, and positive quantities on
// ticket price lines.  Violations wrap ErrMalformed.
func (r *ReservationRecord) Validate() error {
	var problems []string
	if r.ID <= 0 {
		problems = append(problems, "missing id")
	}
	if r.CustomerID <= 0 {
		problems = append(problems, "missing customerId")
	}
	for i, it := range r.BookingItems {
		if it.ProductID <= 0 {
			problems = append(problems, fmt.Sprintf("bookingItems[%d]: missing productId", i))
		}
		if it.AvailabilityID <= 0 {
			problems = append(problems, fmt.Sprintf("bookingItems[%d]: missing availabilityId", i))
		}
		for j, lt := range it.LineTotals {
			if lt.Type != LineTicketPrice {
				continue
			}
			if lt.Quantity <= 0 {
				problems = append(problems, fmt.Sprintf("bookingItems[%d].lineTotals[%d]: quantity must be positive", i, j))
			}
			if lt.PersonCategoryIndex == nil {
				problems = append(problems, fmt.Sprintf("bookingItems[%d].lineTotals[%d]: missing personCategoryIndex", i, j))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(problems, "; "))
	}
	return nil
}

// DeclaredTickets returns the number of tickets the item's ticket price
// lines declare.
func (it *BookingItemRecord) DeclaredTickets() int {
	n := 0
	for _, lt := range it.LineTotals {
		if lt.Type == LineTicketPrice {
			n += lt.Quantity
		}
	}
	return n
}
