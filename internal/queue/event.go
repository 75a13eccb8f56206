// Package queue defines message payloads exchanged over the message
// broker and the consumer that turns import requests into imports.
package queue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// ImportRequest asks for one reservation to be imported.  It is the body
// of messages on the reservation.import queue and of POST /v1/imports.
// Source may be empty to use the configured default.
type ImportRequest struct {
	RequestID   string                   `json:"request_id,omitempty"`
	Source      string                   `json:"source"`
	Reservation remote.ReservationRecord `json:"reservation"`
}

// BookingImportedEvent is published after an import committed.  It
// carries enough for downstream consumers to react to mismatches
// without querying the primary database.
type BookingImportedEvent struct {
	BookingID       uint64          `json:"booking_id"`
	Code            string          `json:"code"`
	Source          string          `json:"source"`
	ExternalID      int64           `json:"external_id"`
	MatchesExternal bool            `json:"matches_external"`
	ItemCount       int             `json:"item_count"`
	TicketCount     int             `json:"ticket_count"`
	SyncErrorCount  int             `json:"sync_error_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ImportedAt      string          `json:"imported_at"`
}

// NewBookingImportedEvent builds the event for a committed booking.
// TotalAmount is zero when totals were never populated.
func NewBookingImportedEvent(b *model.Booking) BookingImportedEvent {
	ev := BookingImportedEvent{
		BookingID:       b.ID,
		Code:            b.Code,
		Source:          b.Identity.Source,
		ExternalID:      b.Identity.ExternalID,
		MatchesExternal: b.MatchesExternal,
		ItemCount:       len(b.Items),
		TicketCount:     len(b.ScopeTickets()),
		SyncErrorCount:  len(b.SyncErrors),
		ImportedAt:      b.ImportedAt.UTC().Format(time.RFC3339),
	}
	if a, err := b.Totals.Get(); err == nil {
		ev.TotalAmount = a.Total
	}
	return ev
}
