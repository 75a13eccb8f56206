package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/model"
)

// Store runs imports against MySQL.  Each WithTx call opens one
// transaction; the importer's lookups, upserts and the final booking
// replacement all execute on it so that a failed import leaves no trace.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

var _ importer.Store = (*Store)(nil)

// WithTx begins a transaction, hands it to fn and commits when fn
// returns nil.  Any error, including a panic unwinding through fn,
// rolls the transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(tx importer.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// sqlTx implements importer.Tx on a *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%w: %s", ErrConflict, me.Message)
	}
	return err
}

func (t *sqlTx) FindCustomer(ctx context.Context, id model.ExternalIdentity) (*model.Customer, error) {
	const q = `SELECT id, source, external_id, name, email FROM customers WHERE source = ? AND external_id = ?`
	var c model.Customer
	var email sql.NullString
	err := t.tx.QueryRowContext(ctx, q, id.Source, id.ExternalID).Scan(
		&c.ID, &c.Identity.Source, &c.Identity.ExternalID, &c.Name, &email,
	)
	if err != nil {
		return nil, translate(err)
	}
	if email.Valid {
		e := email.String
		c.Email = &e
	}
	return &c, nil
}

func (t *sqlTx) FindPersonCategory(ctx context.Context, id model.ExternalIdentity) (*model.PersonCategory, error) {
	const q = `SELECT id, source, external_id, name FROM person_categories WHERE source = ? AND external_id = ?`
	var pc model.PersonCategory
	err := t.tx.QueryRowContext(ctx, q, id.Source, id.ExternalID).Scan(
		&pc.ID, &pc.Identity.Source, &pc.Identity.ExternalID, &pc.Name,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &pc, nil
}

func (t *sqlTx) CreatePersonCategory(ctx context.Context, pc *model.PersonCategory) error {
	const q = `INSERT INTO person_categories (source, external_id, name) VALUES (?, ?, ?)`
	id, err := t.insert(ctx, q, pc.Identity.Source, pc.Identity.ExternalID, pc.Name)
	if err != nil {
		return err
	}
	pc.ID = id
	return nil
}

// UpsertProduct inserts the product or refreshes its name.  The
// LAST_INSERT_ID(id) idiom makes MySQL report the existing row's id on
// the update path.
func (t *sqlTx) UpsertProduct(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products (source, external_id, name) VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name), id = LAST_INSERT_ID(id)`
	id, err := t.insert(ctx, q, p.Identity.Source, p.Identity.ExternalID, p.Name)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (t *sqlTx) UpsertEvent(ctx context.Context, e *model.Event) error {
	if e.Product == nil {
		return fmt.Errorf("event %s has no product", e.Identity)
	}
	const q = `INSERT INTO events (source, external_id, product_id, title, starts_at) VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE product_id = VALUES(product_id), title = VALUES(title),
                                       starts_at = VALUES(starts_at), id = LAST_INSERT_ID(id)`
	var startsAt sql.NullTime
	if e.StartsAt != nil {
		startsAt = sql.NullTime{Time: e.StartsAt.UTC(), Valid: true}
	}
	id, err := t.insert(ctx, q, e.Identity.Source, e.Identity.ExternalID, e.Product.ID, e.Title, startsAt)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (t *sqlTx) FindDiscount(ctx context.Context, id model.ExternalIdentity, code string) (*model.Discount, error) {
	var row *sql.Row
	if id.ExternalID != 0 {
		const q = `SELECT id, source, external_id, code, policy FROM discounts
                   WHERE source = ? AND external_id = ? ORDER BY id LIMIT 1`
		row = t.tx.QueryRowContext(ctx, q, id.Source, id.ExternalID)
	} else {
		const q = `SELECT id, source, external_id, code, policy FROM discounts
                   WHERE source = ? AND external_id = 0 AND code = ?`
		row = t.tx.QueryRowContext(ctx, q, id.Source, code)
	}
	d := &model.Discount{PersonCategoryIDs: map[uint64]bool{}, ProductIDs: map[uint64]bool{}}
	var policy string
	if err := row.Scan(&d.ID, &d.Identity.Source, &d.Identity.ExternalID, &d.Code, &policy); err != nil {
		return nil, translate(err)
	}
	d.Policy = model.DiscountPolicy(policy)

	if err := t.loadIDSet(ctx, `SELECT person_category_id FROM discount_person_categories WHERE discount_id = ?`, d.ID, d.PersonCategoryIDs); err != nil {
		return nil, err
	}
	if err := t.loadIDSet(ctx, `SELECT product_id FROM discount_products WHERE discount_id = ?`, d.ID, d.ProductIDs); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *sqlTx) loadIDSet(ctx context.Context, q string, id uint64, into map[uint64]bool) error {
	rows, err := t.tx.QueryContext(ctx, q, id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v uint64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		into[v] = true
	}
	return rows.Err()
}

// CreateDiscount inserts the discount together with its eligibility sets.
func (t *sqlTx) CreateDiscount(ctx context.Context, d *model.Discount) error {
	const q = `INSERT INTO discounts (source, external_id, code, policy) VALUES (?, ?, ?, ?)`
	id, err := t.insert(ctx, q, d.Identity.Source, d.Identity.ExternalID, d.Code, string(d.Policy))
	if err != nil {
		return err
	}
	d.ID = id
	for pc := range d.PersonCategoryIDs {
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO discount_person_categories (discount_id, person_category_id) VALUES (?, ?)`, id, pc); err != nil {
			return translate(err)
		}
	}
	for p := range d.ProductIDs {
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO discount_products (discount_id, product_id) VALUES (?, ?)`, id, p); err != nil {
			return translate(err)
		}
	}
	return nil
}

func (t *sqlTx) FindAddOn(ctx context.Context, id model.ExternalIdentity) (*model.AddOn, error) {
	const q = `SELECT id, source, external_id, name, price_basis FROM add_ons WHERE source = ? AND external_id = ?`
	var a model.AddOn
	var basis string
	err := t.tx.QueryRowContext(ctx, q, id.Source, id.ExternalID).Scan(
		&a.ID, &a.Identity.Source, &a.Identity.ExternalID, &a.Name, &basis,
	)
	if err != nil {
		return nil, translate(err)
	}
	a.PriceBasis = model.PriceBasis(basis)
	return &a, nil
}

// insert executes an INSERT on the transaction and returns the id MySQL
// reports for it.
func (t *sqlTx) insert(ctx context.Context, q string, args ...interface{}) (uint64, error) {
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// totalsArgs returns the eight cached total columns in schema order.
// Uncomputed totals are written as NULL.
func totalsArgs(c *model.CachedTotals) []interface{} {
	a, err := c.Get()
	if err != nil {
		out := make([]interface{}, 8)
		for i := range out {
			out[i] = decimal.NullDecimal{}
		}
		return out
	}
	vals := []decimal.Decimal{a.BasePrice, a.Discounts, a.Fees, a.AddOns, a.ManualAdjustments, a.ItemAddOns, a.Gross, a.Total}
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = decimal.NullDecimal{Decimal: v, Valid: true}
	}
	return out
}

const totalsColumns = `base_price, discounts, fees, add_ons, manual_adjustments, item_add_ons, gross_amount, total_amount`
