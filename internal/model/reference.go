package model

import "time"

// Customer is the party a booking belongs to.  Customers are never
// created by the importer; a booking whose customer is unknown is
// rejected.
type Customer struct {
	ID       uint64           // customers.id
	Identity ExternalIdentity // customers.source, customers.external_id
	Name     string           // customers.name
	Email    *string          // customers.email (nullable)
}

// PersonCategory classifies tickets (Adult, Child, Senior...).  It is
// created on first sight during import and looked up by its external
// identity afterwards.
type PersonCategory struct {
	ID       uint64           // person_categories.id
	Identity ExternalIdentity // person_categories.source, person_categories.external_id
	Name     string           // person_categories.name
}

// Product is the sellable offering an event belongs to.
type Product struct {
	ID       uint64           // products.id
	Identity ExternalIdentity // products.source, products.external_id
	Name     string           // products.name
}

// Event is a concrete availability (a dated occurrence of a product)
// that booking items reference.
type Event struct {
	ID       uint64           // events.id
	Identity ExternalIdentity // events.source, events.external_id
	Product  *Product         // events.product_id
	Title    string           // events.title
	StartsAt *time.Time       // events.starts_at (nullable)
}

// DiscountPolicy selects how a discount is weighed onto tickets.
type DiscountPolicy string

const (
	// DiscountPerPerson splits the discount evenly per applicable ticket.
	DiscountPerPerson DiscountPolicy = "PER_PERSON"
	// DiscountPerBooking splits the discount by applicable gross revenue.
	DiscountPerBooking DiscountPolicy = "PER_BOOKING"
)

// Discount is the reference record behind a discount adjustment.  The
// person category and product sets restrict which tickets the discount
// applies to.
//
// Fields:
//  ID                – discounts.id
//  Identity          – source and promotion id.  ExternalID is zero when
//                      the source reported no promotion id; Code then
//                      identifies the discount.
//  Code              – label as reported by the source.
//  Policy            – weighting policy.
//  PersonCategoryIDs – eligible person categories (discount_person_categories).
//  ProductIDs        – eligible products (discount_products).
type Discount struct {
	ID                uint64
	Identity          ExternalIdentity
	Code              string
	Policy            DiscountPolicy
	PersonCategoryIDs map[uint64]bool
	ProductIDs        map[uint64]bool
}

// Applies reports whether the ticket is eligible for the discount: its
// person category must be in the configured category set and its event's
// product in the configured product set.
func (d *Discount) Applies(t *Ticket) bool {
	if t.PersonCategory == nil || !d.PersonCategoryIDs[t.PersonCategory.ID] {
		return false
	}
	if t.Item == nil || t.Item.Event == nil || t.Item.Event.Product == nil {
		return false
	}
	return d.ProductIDs[t.Item.Event.Product.ID]
}

// PriceBasis selects how an add-on's amount is derived from the chosen
// option price.
type PriceBasis string

const (
	// PricePerItem charges the option price once per subject.
	PricePerItem PriceBasis = "PER_ITEM"
	// PricePerTicket charges the option price once per ticket in scope.
	PricePerTicket PriceBasis = "PER_TICKET"
)

// AddOn is the reference record behind an add-on adjustment.
type AddOn struct {
	ID         uint64           // add_ons.id
	Identity   ExternalIdentity // add_ons.source, add_ons.external_id
	Name       string           // add_ons.name
	PriceBasis PriceBasis       // add_ons.price_basis
}
