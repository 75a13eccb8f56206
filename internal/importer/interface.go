package importer

import (
	"context"

	"github.com/iliyamo/booking-reconciliation/internal/model"
)

// Tx is the transactional data-access contract the manager runs
// against.  Lookups return ErrNotFound when nothing matches.  Create and
// upsert methods populate the ID of the passed entity.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go
type Tx interface {
	FindCustomer(ctx context.Context, id model.ExternalIdentity) (*model.Customer, error)
	FindPersonCategory(ctx context.Context, id model.ExternalIdentity) (*model.PersonCategory, error)
	CreatePersonCategory(ctx context.Context, pc *model.PersonCategory) error
	UpsertProduct(ctx context.Context, p *model.Product) error
	UpsertEvent(ctx context.Context, e *model.Event) error
	// FindDiscount matches on the identity when its ExternalID is
	// non-zero and on (source, code) otherwise.
	FindDiscount(ctx context.Context, id model.ExternalIdentity, code string) (*model.Discount, error)
	CreateDiscount(ctx context.Context, d *model.Discount) error
	FindAddOn(ctx context.Context, id model.ExternalIdentity) (*model.AddOn, error)
	// ReplaceBooking atomically deletes any booking with the same
	// external identity (cascading through its whole subtree) and
	// inserts b with all items, tickets, adjustments, mapped
	// adjustments and sync errors.  It reports whether a prior booking
	// was replaced.
	ReplaceBooking(ctx context.Context, b *model.Booking) (bool, error)
}

// Store opens the transaction boundary an import runs inside.  fn's
// error rolls the transaction back; nil commits it.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Locker serializes importers of the same external identity.  The
// returned release function must be called once the import finished.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher is notified after an import committed.
type EventPublisher interface {
	BookingImported(ctx context.Context, b *model.Booking) error
}
