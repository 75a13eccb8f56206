// Package repository implements the MySQL persistence of imported
// bookings.  Store satisfies importer.Store and runs every import inside
// one database transaction; BookingRepo serves the read side used by the
// HTTP handlers.
//
// Sentinel values below let higher layers distinguish failure scenarios
// without inspecting driver errors.  Handlers translate them into HTTP
// status codes.
package repository

import (
	"errors"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
)

// ErrNotFound is returned when a lookup matches no row.  It is the
// importer's sentinel so errors.Is works across both packages.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = importer.ErrNotFound

// ErrConflict is returned when a write violates a uniqueness constraint,
// for example two importers racing to create the same reference row
// without holding the import lock.  Handlers translate it into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
