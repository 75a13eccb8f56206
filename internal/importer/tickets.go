package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/money"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// priceSlot is one ticket price line of a booking item: quantity
// tickets of a person category at a unit price.
type priceSlot struct {
	index    int64
	category *model.PersonCategory
	price    decimal.Decimal
	quantity int
	filled   int
}

func (s *priceSlot) open() bool { return s.filled < s.quantity }

// priceTable holds an item's price slots in line order, and indexed by
// person category index.  An index may carry several slots when the
// source priced the same category at different rates.
type priceTable struct {
	slots   []*priceSlot
	byIndex map[int64][]*priceSlot
}

func (t *priceTable) firstOpen(index int64) *priceSlot {
	for _, s := range t.byIndex[index] {
		if s.open() {
			return s
		}
	}
	return nil
}

// stashedCode is a ticket code that could not be placed where the source
// said it belongs and is kept for recycling into a shortfall.
type stashedCode struct {
	code  string
	index int64
}

// priceTable builds the slots of an item from its ticket price lines.
// The unit price is the line price divided by its quantity.
func (r *importRun) priceTable(rec *remote.BookingItemRecord) (*priceTable, error) {
	t := &priceTable{byIndex: make(map[int64][]*priceSlot)}
	for _, lt := range rec.LineTotals {
		if lt.Type != remote.LineTicketPrice {
			continue
		}
		index := *lt.PersonCategoryIndex
		pc, err := r.personCategory(index, lt.Label)
		if err != nil {
			return nil, err
		}
		s := &priceSlot{
			index:    index,
			category: pc,
			price:    money.Div(lt.Price, decimal.NewFromInt(int64(lt.Quantity))),
			quantity: lt.Quantity,
		}
		t.slots = append(t.slots, s)
		t.byIndex[index] = append(t.byIndex[index], s)
	}
	return t, nil
}

// issueTickets walks the item's ticket codes against its price table.
//
// Codes whose category the item does not price are recorded as
// mismatchTicketCodes, codes beyond a category's declared quantity as
// extraTicketCodes; both are stashed.  Every still-open slot is then
// filled first by recycling stashed codes (oldest first) and, once the
// stash is empty, by placeholder codes; each substitution records
// missingTicketCodes.  Stashed codes left over are recorded as
// unusableTicketCode and discarded.
func (r *importRun) issueTickets(it *model.BookingItem, rec *remote.BookingItemRecord, table *priceTable) {
	b := r.booking
	var stash []stashedCode

	for _, tc := range rec.TicketCodes {
		if _, priced := table.byIndex[tc.PersonCategoryIndex]; !priced {
			b.Record(model.SyncMismatchTicketCodes,
				"item %d: ticket code %s has person category %d, which the item does not price",
				rec.BookingItemID, tc.Code, tc.PersonCategoryIndex)
			stash = append(stash, stashedCode{code: tc.Code, index: tc.PersonCategoryIndex})
			continue
		}
		slot := table.firstOpen(tc.PersonCategoryIndex)
		if slot == nil {
			b.Record(model.SyncExtraTicketCodes,
				"item %d: ticket code %s exceeds the declared quantity of person category %d",
				rec.BookingItemID, tc.Code, tc.PersonCategoryIndex)
			stash = append(stash, stashedCode{code: tc.Code, index: tc.PersonCategoryIndex})
			continue
		}
		issue(it, slot, tc.Code)
	}

	placeholders := 0
	for _, slot := range table.slots {
		for slot.open() {
			if len(stash) > 0 {
				c := stash[0]
				stash = stash[1:]
				issue(it, slot, c.code)
				b.Record(model.SyncMissingTicketCodes,
					"item %d: short of person category %d tickets; recycled code %s reported for person category %d",
					rec.BookingItemID, slot.index, c.code, c.index)
				continue
			}
			placeholders++
			code := placeholderCode(b.Code, rec.BookingItemID, placeholders)
			issue(it, slot, code)
			b.Record(model.SyncMissingTicketCodes,
				"item %d: short of person category %d tickets; issued placeholder code %s",
				rec.BookingItemID, slot.index, code)
		}
	}

	for _, c := range stash {
		b.Record(model.SyncUnusableTicketCode,
			"item %d: ticket code %s (person category %d) could not be placed and was discarded",
			rec.BookingItemID, c.code, c.index)
	}
}

func issue(it *model.BookingItem, slot *priceSlot, code string) {
	it.AddTicket(&model.Ticket{Code: code, PersonCategory: slot.category, BasePrice: slot.price})
	slot.filled++
}

// placeholderCode names the n-th synthesized code of a booking item.
func placeholderCode(bookingCode string, itemID int64, n int) string {
	return fmt.Sprintf("%s-%d-MISSING-%d", bookingCode, itemID, n)
}
