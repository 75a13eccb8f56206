package handler

import (
	"context"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
	"github.com/iliyamo/booking-reconciliation/internal/repository"
)

//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go

// Importer runs one import.  *importer.Service satisfies it.
type Importer interface {
	Import(ctx context.Context, source string, rec *remote.ReservationRecord) (*model.Booking, error)
}

// BookingReader loads imported bookings.  *repository.BookingRepo
// satisfies it.
type BookingReader interface {
	GetSummary(ctx context.Context, id uint64) (*model.Summary, error)
	Search(ctx context.Context, q repository.BookingSearchQuery) ([]repository.BookingRow, int64, error)
}
