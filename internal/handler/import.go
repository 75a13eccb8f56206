package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/lock"
	"github.com/iliyamo/booking-reconciliation/internal/middleware"
	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/queue"
	"github.com/iliyamo/booking-reconciliation/internal/repository"
)

// ImportHandler exposes imports and the resulting bookings over HTTP.
type ImportHandler struct {
	Importer Importer
	Bookings BookingReader
}

// NewImportHandler constructs an ImportHandler and panics if a
// dependency is nil.
func NewImportHandler(imp Importer, bookings BookingReader) *ImportHandler {
	if imp == nil || bookings == nil {
		panic("nil dependency passed to NewImportHandler")
	}
	return &ImportHandler{Importer: imp, Bookings: bookings}
}

// Import handles POST /v1/imports.  The body is a queue.ImportRequest.
// It responds 201 with the booking summary; sync errors are part of the
// summary, not failures.
//
//	400 – undecodable body or malformed reservation record
//	409 – another import of the same reservation holds the lock
//	422 – unknown customer or add-on
//	500 – anything else
func (h *ImportHandler) Import(c echo.Context) error {
	var req queue.ImportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Importer.Import(c.Request().Context(), req.Source, &req.Reservation)
	if err != nil {
		status := importStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("import: operator=%s reservation=%d: %v", middleware.OperatorID(c), req.Reservation.ID, err)
			return c.JSON(status, echo.Map{"error": "import failed"})
		}
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	log.Printf("import: operator=%s booking=%s id=%d matches=%t", middleware.OperatorID(c), b.Identity, b.ID, b.MatchesExternal)
	return c.JSON(http.StatusCreated, echo.Map{"item": model.Summarize(b)})
}

func importStatus(err error) int {
	switch {
	case errors.Is(err, importer.ErrMalformedRecord):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrCustomerNotFound), errors.Is(err, importer.ErrAddOnNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lock.ErrTimeout), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// GetBooking handles GET /v1/bookings/:id.
func (h *ImportHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	s, err := h.Bookings.GetSummary(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if err != nil {
		log.Printf("bookings: get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": s})
}

// ListBookings handles GET /v1/bookings.
//
// Query params: source, status, code (substring), mismatched (true/false),
// page (default 1), page_size (default 20, max 100).
func (h *ImportHandler) ListBookings(c echo.Context) error {
	q := repository.BookingSearchQuery{
		Source: c.QueryParam("source"),
		Status: c.QueryParam("status"),
		Code:   c.QueryParam("code"),
	}
	if v := c.QueryParam("mismatched"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "mismatched must be true or false"})
		}
		q.Mismatched = &b
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	rows, total, err := h.Bookings.Search(c.Request().Context(), q)
	if err != nil {
		log.Printf("bookings: search: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": total})
}
