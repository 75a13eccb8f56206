package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// Service is the entry point the HTTP handler, the queue consumer and
// the CLI share.  It serializes imports of the same reservation with
// Locker, runs the Manager inside one Store transaction and notifies
// Publisher after the commit.
//
// Locker and Publisher are optional.  A failed publish is logged and
// does not fail the import; the booking is already committed.
type Service struct {
	Store         Store
	Manager       *Manager
	Locker        Locker
	Publisher     EventPublisher
	DefaultSource string
}

// LockKey is the lock name guarding imports of one external reservation.
func LockKey(source string, externalID int64) string {
	return fmt.Sprintf("import:%s:%d", source, externalID)
}

// Import imports rec from source (DefaultSource when empty) and returns
// the committed booking.
func (s *Service) Import(ctx context.Context, source string, rec *remote.ReservationRecord) (*model.Booking, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}
	if source == "" {
		source = s.DefaultSource
	}
	if source == "" {
		return nil, fmt.Errorf("%w: missing source", ErrMalformedRecord)
	}

	if s.Locker != nil {
		key := LockKey(source, rec.ID)
		release, err := s.Locker.Acquire(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		defer release()
	}

	var booking *model.Booking
	err := s.Store.WithTx(ctx, func(tx Tx) error {
		b, err := s.Manager.Import(ctx, tx, source, rec)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Publisher != nil {
		if err := s.Publisher.BookingImported(ctx, booking); err != nil {
			log.Printf("importer: publish booking %s: %v", booking.Identity, err)
		}
	}
	return booking, nil
}
