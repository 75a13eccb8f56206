package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOnlyForValidationMismatches(t *testing.T) {
	errorsOnly := map[SyncErrorType]bool{
		SyncTotalMismatch:       true,
		SyncItemCountMismatch:   true,
		SyncTicketCountMismatch: true,
	}
	for _, typ := range []SyncErrorType{
		SyncExtraDiscountCodes, SyncMissingPersonCategory, SyncExtraTicketCodes,
		SyncMismatchTicketCodes, SyncMissingTicketCodes, SyncUnusableTicketCode,
		SyncMissingAddOnOption, SyncTotalMismatch, SyncItemCountMismatch,
		SyncTicketCountMismatch, SyncDiscountTotalMismatch,
	} {
		assert.True(t, typ.Valid(), typ)
		want := SeverityWarning
		if errorsOnly[typ] {
			want = SeverityError
		}
		assert.Equal(t, want, typ.Severity(), typ)
	}
	assert.False(t, SyncErrorType("nope").Valid())
}

func TestSummarize(t *testing.T) {
	b := &Booking{ID: 3, Code: "BK", Identity: ExternalIdentity{Source: "src", ExternalID: 9}}
	it := &BookingItem{}
	b.AddItem(it)
	it.AddTicket(&Ticket{Code: "T1"})
	it.AddTicket(&Ticket{Code: "T2"})
	b.Record(SyncMissingTicketCodes, "item %d", 1)

	s := Summarize(b)
	assert.Equal(t, 1, s.ItemCount)
	assert.Equal(t, 2, s.TicketCount)
	assert.Nil(t, s.Totals)
	require.Len(t, s.SyncErrors, 1)
	assert.Equal(t, SeverityWarning, s.SyncErrors[0].Severity)

	b.Totals.Set(Amounts{Total: decimal.NewFromInt(25)})
	s = Summarize(b)
	require.NotNil(t, s.Totals)
	assert.True(t, s.Totals.Total.Equal(decimal.NewFromInt(25)))
}
