package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/model"
)

func TestFindDiscountByPromotionReturnsOldest(t *testing.T) {
	s := New()
	promo := model.ExternalIdentity{Source: "src", ExternalID: 3}
	first := &model.Discount{Identity: promo, Code: "A"}
	s.AddDiscount(first)
	for _, code := range []string{"B", "C", "D", "E"} {
		s.AddDiscount(&model.Discount{Identity: promo, Code: code})
	}

	for i := 0; i < 20; i++ {
		err := s.WithTx(context.Background(), func(tx importer.Tx) error {
			d, err := tx.FindDiscount(context.Background(), promo, "C")
			require.NoError(t, err)
			assert.Same(t, first, d)
			return nil
		})
		require.NoError(t, err)
	}
}

func TestFindDiscountWithoutPromotionMatchesCode(t *testing.T) {
	s := New()
	id := model.ExternalIdentity{Source: "src"}
	b := &model.Discount{Identity: id, Code: "B"}
	s.AddDiscount(&model.Discount{Identity: id, Code: "A"})
	s.AddDiscount(b)

	err := s.WithTx(context.Background(), func(tx importer.Tx) error {
		d, err := tx.FindDiscount(context.Background(), id, "B")
		require.NoError(t, err)
		assert.Same(t, b, d)
		_, err = tx.FindDiscount(context.Background(), id, "Z")
		assert.True(t, errors.Is(err, importer.ErrNotFound))
		return nil
	})
	require.NoError(t, err)
}

func TestFailedTxLeavesStateUntouched(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	err := s.WithTx(context.Background(), func(tx importer.Tx) error {
		require.NoError(t, tx.CreatePersonCategory(context.Background(), &model.PersonCategory{
			Identity: model.ExternalIdentity{Source: "src", ExternalID: 1}, Name: "Adult"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.PersonCategories())
}
