// Package memstore is an in-memory importer.Store.  It backs the CLI's
// dry-run mode and the importer tests.  Transactions are serialized by
// a single mutex and run against a copy of the state that replaces the
// committed state only when the callback returns nil.
package memstore

import (
	"context"
	"sync"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/model"
)

type discountKey struct {
	id   model.ExternalIdentity
	code string
}

type state struct {
	customers  map[model.ExternalIdentity]*model.Customer
	categories map[model.ExternalIdentity]*model.PersonCategory
	products   map[model.ExternalIdentity]*model.Product
	events     map[model.ExternalIdentity]*model.Event
	discounts  map[discountKey]*model.Discount
	addOns     map[model.ExternalIdentity]*model.AddOn
	bookings   map[model.ExternalIdentity]*model.Booking
	nextID     uint64
}

func newState() *state {
	return &state{
		customers:  make(map[model.ExternalIdentity]*model.Customer),
		categories: make(map[model.ExternalIdentity]*model.PersonCategory),
		products:   make(map[model.ExternalIdentity]*model.Product),
		events:     make(map[model.ExternalIdentity]*model.Event),
		discounts:  make(map[discountKey]*model.Discount),
		addOns:     make(map[model.ExternalIdentity]*model.AddOn),
		bookings:   make(map[model.ExternalIdentity]*model.Booking),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.discounts {
		c.discounts[k] = v
	}
	for k, v := range s.addOns {
		c.addOns[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.nextID = s.nextID
	return c
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

// Store is the in-memory store.  The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex
	st *state
}

// New returns an empty store.
func New() *Store { return &Store{st: newState()} }

var _ importer.Store = (*Store)(nil)

// WithTx runs fn against a private copy of the state and commits it
// when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx importer.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// AddCustomer seeds a customer and assigns its ID.
func (s *Store) AddCustomer(c *model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.st.id()
	s.st.customers[c.Identity] = c
}

// AddPersonCategory seeds a person category and assigns its ID.
func (s *Store) AddPersonCategory(pc *model.PersonCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc.ID = s.st.id()
	s.st.categories[pc.Identity] = pc
}

// AddProduct seeds a product and assigns its ID.
func (s *Store) AddProduct(p *model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.st.id()
	s.st.products[p.Identity] = p
}

// AddDiscount seeds a discount and assigns its ID.
func (s *Store) AddDiscount(d *model.Discount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.st.id()
	s.st.discounts[discountKey{id: d.Identity, code: d.Code}] = d
}

// AddAddOn seeds an add-on and assigns its ID.
func (s *Store) AddAddOn(a *model.AddOn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.st.id()
	s.st.addOns[a.Identity] = a
}

// Booking returns the committed booking with the given identity.
func (s *Store) Booking(id model.ExternalIdentity) (*model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.bookings[id]
	return b, ok
}

// Bookings returns the number of committed bookings.
func (s *Store) Bookings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.bookings)
}

// PersonCategories returns the number of committed person categories.
func (s *Store) PersonCategories() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.categories)
}

// Discounts returns the number of committed discounts.
func (s *Store) Discounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.discounts)
}

type tx struct {
	st *state
}

func (t *tx) FindCustomer(_ context.Context, id model.ExternalIdentity) (*model.Customer, error) {
	if c, ok := t.st.customers[id]; ok {
		return c, nil
	}
	return nil, importer.ErrNotFound
}

func (t *tx) FindPersonCategory(_ context.Context, id model.ExternalIdentity) (*model.PersonCategory, error) {
	if pc, ok := t.st.categories[id]; ok {
		return pc, nil
	}
	return nil, importer.ErrNotFound
}

func (t *tx) CreatePersonCategory(_ context.Context, pc *model.PersonCategory) error {
	pc.ID = t.st.id()
	t.st.categories[pc.Identity] = pc
	return nil
}

func (t *tx) UpsertProduct(_ context.Context, p *model.Product) error {
	if existing, ok := t.st.products[p.Identity]; ok {
		p.ID = existing.ID
	} else {
		p.ID = t.st.id()
	}
	t.st.products[p.Identity] = p
	return nil
}

func (t *tx) UpsertEvent(_ context.Context, e *model.Event) error {
	if existing, ok := t.st.events[e.Identity]; ok {
		e.ID = existing.ID
	} else {
		e.ID = t.st.id()
	}
	t.st.events[e.Identity] = e
	return nil
}

func (t *tx) FindDiscount(_ context.Context, id model.ExternalIdentity, code string) (*model.Discount, error) {
	if id.ExternalID != 0 {
		// oldest discount of the promotion, like the SQL store
		var found *model.Discount
		for k, d := range t.st.discounts {
			if k.id == id && (found == nil || d.ID < found.ID) {
				found = d
			}
		}
		if found == nil {
			return nil, importer.ErrNotFound
		}
		return found, nil
	}
	if d, ok := t.st.discounts[discountKey{id: id, code: code}]; ok {
		return d, nil
	}
	return nil, importer.ErrNotFound
}

func (t *tx) CreateDiscount(_ context.Context, d *model.Discount) error {
	d.ID = t.st.id()
	t.st.discounts[discountKey{id: d.Identity, code: d.Code}] = d
	return nil
}

func (t *tx) FindAddOn(_ context.Context, id model.ExternalIdentity) (*model.AddOn, error) {
	if a, ok := t.st.addOns[id]; ok {
		return a, nil
	}
	return nil, importer.ErrNotFound
}

func (t *tx) ReplaceBooking(_ context.Context, b *model.Booking) (bool, error) {
	_, replaced := t.st.bookings[b.Identity]
	b.ID = t.st.id()
	for _, it := range b.Items {
		it.ID = t.st.id()
		for _, tk := range it.Tickets {
			tk.ID = t.st.id()
		}
		for _, a := range it.AddOns {
			a.ID = t.st.id()
		}
	}
	for _, a := range b.Adjustments {
		a.ID = t.st.id()
	}
	for _, tk := range b.ScopeTickets() {
		for _, m := range tk.Mapped {
			m.ID = t.st.id()
		}
	}
	for _, e := range b.SyncErrors {
		e.ID = t.st.id()
		e.BookingID = b.ID
	}
	t.st.bookings[b.Identity] = b
	return replaced, nil
}
