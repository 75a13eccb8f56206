package remote

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "id": 981,
  "code": "NX-981",
  "status": "CONFIRMED",
  "customerId": 55,
  "taxAmount": "1.20",
  "lineTotals": [
    {"type": 1500, "label": "SPRING", "quantity": 1, "price": "-5.00", "promotionId": 3}
  ],
  "bookingItems": [{
    "availabilityId": 700,
    "bookingItemId": 1,
    "productId": 70,
    "productName": "Harbour cruise",
    "lineTotals": [
      {"type": 1101, "label": "Adult", "quantity": 2, "price": "60.00", "personCategoryIndex": 1}
    ],
    "ticketCodes": [{"code": "A1", "personCategoryIndex": 1}, {"code": "A2", "personCategoryIndex": 1}]
  }],
  "pricing": {"totalAmount": "55.00", "taxAmount": "1.20", "priceAdjustments": []}
}`

func TestDecodeAndValidate(t *testing.T) {
	var rec ReservationRecord
	require.NoError(t, json.Unmarshal([]byte(sample), &rec))
	require.NoError(t, rec.Validate())

	assert.Equal(t, int64(981), rec.ID)
	assert.Equal(t, "1.2", rec.TaxAmount.String())
	require.Len(t, rec.LineTotals, 1)
	require.NotNil(t, rec.LineTotals[0].PromotionID)
	assert.Equal(t, int64(3), *rec.LineTotals[0].PromotionID)
	require.Len(t, rec.BookingItems, 1)
	assert.Equal(t, 2, rec.BookingItems[0].DeclaredTickets())
	assert.Equal(t, "55", rec.Pricing.TotalAmount.String())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	rec := ReservationRecord{
		BookingItems: []BookingItemRecord{{
			LineTotals: []LineTotal{{Type: LineTicketPrice, Quantity: 0}},
		}},
	}
	err := rec.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	for _, want := range []string{"missing id", "missing customerId", "missing productId", "missing availabilityId", "quantity must be positive", "missing personCategoryIndex"} {
		assert.Contains(t, err.Error(), want)
	}
}
