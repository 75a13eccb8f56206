package model

import "time"

// Summary is the read view of an imported booking returned by the HTTP
// API and printed by the CLI.  Totals is nil when the cached totals have
// not been computed.
type Summary struct {
	ID              uint64           `json:"id"`
	Code            string           `json:"code"`
	Identity        ExternalIdentity `json:"identity"`
	Status          string           `json:"status"`
	MatchesExternal bool             `json:"matches_external"`
	Validated       bool             `json:"validated"`
	ImportedAt      time.Time        `json:"imported_at"`
	ItemCount       int              `json:"item_count"`
	TicketCount     int              `json:"ticket_count"`
	Totals          *Amounts         `json:"totals,omitempty"`
	SyncErrors      []SyncError      `json:"sync_errors"`
}

// Summarize builds the summary of an in-memory booking.
func Summarize(b *Booking) Summary {
	s := Summary{
		ID:              b.ID,
		Code:            b.Code,
		Identity:        b.Identity,
		Status:          b.Status,
		MatchesExternal: b.MatchesExternal,
		Validated:       b.Validated,
		ImportedAt:      b.ImportedAt,
		ItemCount:       len(b.Items),
		TicketCount:     len(b.ScopeTickets()),
		SyncErrors:      make([]SyncError, 0, len(b.SyncErrors)),
	}
	if a, err := b.Totals.Get(); err == nil {
		s.Totals = &a
	}
	for _, e := range b.SyncErrors {
		s.SyncErrors = append(s.SyncErrors, *e)
	}
	return s
}
