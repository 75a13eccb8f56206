package queue

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iliyamo/booking-reconciliation/internal/model"
)

// AuditLog appends one human-friendly line per processed import request
// to <dir>/import.log.  A nil *AuditLog discards everything, so callers
// never need to check.
type AuditLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewAuditLog returns an audit log writing under dir.  An empty dir
// disables auditing and returns nil.
func NewAuditLog(dir string) *AuditLog {
	if dir == "" {
		return nil
	}
	return &AuditLog{path: filepath.Join(dir, "import.log"), now: time.Now}
}

// Success records a committed import.
func (a *AuditLog) Success(req ImportRequest, b *model.Booking) {
	if a == nil {
		return
	}
	total := "n/a"
	if t, err := b.Totals.Get(); err == nil {
		total = t.Total.StringFixed(2)
	}
	a.write(fmt.Sprintf("Import committed | request=%q | booking_id=%d | code=%s | identity=%s | items=%d | tickets=%d | total=%s | matches=%t | sync_errors=%d",
		req.RequestID, b.ID, b.Code, b.Identity, len(b.Items), len(b.ScopeTickets()), total, b.MatchesExternal, len(b.SyncErrors)))
}

// Failure records a rejected request.
func (a *AuditLog) Failure(req ImportRequest, err error) {
	if a == nil {
		return
	}
	a.write(fmt.Sprintf("Import failed | request=%q | source=%q | reservation_id=%d | error=%q",
		req.RequestID, req.Source, req.Reservation.ID, err.Error()))
}

func (a *AuditLog) write(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		log.Printf("import-audit: mkdir: %v", err)
		return
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("import-audit: open: %v", err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "[%s] %s\n", a.now().UTC().Format(time.RFC3339), line); err != nil {
		log.Printf("import-audit: write: %v", err)
	}
}
