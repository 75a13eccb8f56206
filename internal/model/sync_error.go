package model

import "time"

// SyncErrorType is the closed set of reconciliation anomalies.
type SyncErrorType string

const (
	SyncExtraDiscountCodes    SyncErrorType = "extraDiscountCodes"
	SyncMissingPersonCategory SyncErrorType = "missingPersonCategory"
	SyncExtraTicketCodes      SyncErrorType = "extraTicketCodes"
	SyncMismatchTicketCodes   SyncErrorType = "mismatchTicketCodes"
	SyncMissingTicketCodes    SyncErrorType = "missingTicketCodes"
	SyncUnusableTicketCode    SyncErrorType = "unusableTicketCode"
	SyncMissingAddOnOption    SyncErrorType = "missingAddOnOption"
	SyncTotalMismatch         SyncErrorType = "totalMismatch"
	SyncItemCountMismatch     SyncErrorType = "itemCountMismatch"
	SyncTicketCountMismatch   SyncErrorType = "ticketCountMismatch"
	SyncDiscountTotalMismatch SyncErrorType = "discountTotalMismatch"
)

// Severity distinguishes repaired structural anomalies (warnings) from
// validation failures (errors).
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Severity returns the severity recorded for the type.  Only validation
// mismatches that clear MatchesExternal are errors.
func (t SyncErrorType) Severity() Severity {
	switch t {
	case SyncTotalMismatch, SyncItemCountMismatch, SyncTicketCountMismatch:
		return SeverityError
	}
	return SeverityWarning
}

// Valid reports whether t belongs to the closed set.
func (t SyncErrorType) Valid() bool {
	switch t {
	case SyncExtraDiscountCodes, SyncMissingPersonCategory, SyncExtraTicketCodes,
		SyncMismatchTicketCodes, SyncMissingTicketCodes, SyncUnusableTicketCode,
		SyncMissingAddOnOption, SyncTotalMismatch, SyncItemCountMismatch,
		SyncTicketCountMismatch, SyncDiscountTotalMismatch:
		return true
	}
	return false
}

// SyncError is an append-only record describing how a reconstructed
// booking diverges from its source.
type SyncError struct {
	ID        uint64        `json:"id"`
	BookingID uint64        `json:"booking_id"`
	Type      SyncErrorType `json:"error_type"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
}
