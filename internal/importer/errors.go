package importer

import (
	"errors"

	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// ErrNotFound is returned by Tx lookups when no entity matches.  Store
// implementations return it (possibly wrapped) instead of driver
// specific errors such as sql.ErrNoRows.
var ErrNotFound = errors.New("not found")

// ErrCustomerNotFound aborts an import whose customer does not exist
// locally.  Customers are never created by the importer.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrAddOnNotFound aborts an import that selects an add-on unknown to
// the local catalogue; its price basis cannot be inferred.
var ErrAddOnNotFound = errors.New("add-on not found")

// ErrMalformedRecord aborts an import whose payload fails structural
// validation.  It is the same value as remote.ErrMalformed.
var ErrMalformedRecord = remote.ErrMalformed
