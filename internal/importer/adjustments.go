package importer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// discountGroup accumulates the discount lines sharing a promotion id
// and label.
type discountGroup struct {
	promotionID int64 // 0 when the source reported none
	label       string
	amount      decimal.Decimal // magnitude; stored negated
	lines       int
}

// discounts materializes one booking-level discount adjustment per
// distinct (promotionId, label) pair.  Duplicate lines are summed and
// recorded as extraDiscountCodes.
func (r *importRun) discounts() error {
	var order []*discountGroup
	groups := make(map[string]*discountGroup)
	for _, lt := range r.rec.LineTotals {
		if lt.Type != remote.LineDiscount {
			continue
		}
		var pid int64
		if lt.PromotionID != nil {
			pid = *lt.PromotionID
		}
		key := fmt.Sprintf("%d|%s", pid, lt.Label)
		g, ok := groups[key]
		if !ok {
			g = &discountGroup{promotionID: pid, label: lt.Label}
			groups[key] = g
			order = append(order, g)
		}
		g.amount = g.amount.Add(lt.Price.Abs())
		g.lines++
	}

	for _, g := range order {
		if g.lines > 1 {
			r.booking.Record(model.SyncExtraDiscountCodes,
				"discount %q (promotion %d) reported on %d lines; amounts summed to %s",
				g.label, g.promotionID, g.lines, g.amount.String())
		}
		d, err := r.discount(g)
		if err != nil {
			return err
		}
		adj := model.NewDiscount(d, g.amount.Neg())
		// a promotion shared by several labels keeps each label
		if g.label != "" {
			adj.Description = g.label
		}
		r.booking.AddAdjustment(adj)
	}
	return nil
}

// discount resolves the reference record of a discount group.  Unknown
// discounts are created with a per-booking policy and empty eligibility
// sets, which spreads them over every ticket by gross revenue.
func (r *importRun) discount(g *discountGroup) (*model.Discount, error) {
	id := r.identity(g.promotionID)
	d, err := r.tx.FindDiscount(r.ctx, id, g.label)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find discount %s %q: %w", id, g.label, err)
	}
	d = &model.Discount{
		Identity:          id,
		Code:              g.label,
		Policy:            model.DiscountPerBooking,
		PersonCategoryIDs: map[uint64]bool{},
		ProductIDs:        map[uint64]bool{},
	}
	if err := r.tx.CreateDiscount(r.ctx, d); err != nil {
		return nil, fmt.Errorf("create discount %s %q: %w", id, g.label, err)
	}
	return d, nil
}

// manualAdjustmentsAndFees materializes booking-level manual adjustment
// and fee lines.  Fee lines are always fees; manual lines become fees
// when their label contains a configured fee keyword.
func (r *importRun) manualAdjustmentsAndFees() {
	for _, lt := range r.rec.LineTotals {
		switch lt.Type {
		case remote.LineFee:
			r.booking.AddAdjustment(model.NewFee(lt.Label, lt.Price))
		case remote.LineManualAdjustment, remote.LineManualCorrection:
			if r.m.isFee(lt.Label) {
				r.booking.AddAdjustment(model.NewFee(lt.Label, lt.Price))
			} else {
				r.booking.AddAdjustment(model.NewManualAdjustment(lt.Label, lt.Price))
			}
		}
	}
}

// addOns materializes one add-on adjustment per chosen option and hands
// it to attach.  Per-ticket add-ons are multiplied by tickets.  An
// option chosen without a price is recorded as missingAddOnOption and
// skipped; an add-on missing from the catalogue aborts the import.
func (r *importRun) addOns(selections []remote.AddOnSelection, tickets int, attach func(*model.Adjustment)) error {
	for _, sel := range selections {
		var chosen []remote.AddOnOption
		for _, opt := range sel.Options {
			if opt.Label != nil {
				chosen = append(chosen, opt)
			}
		}
		if len(chosen) == 0 {
			continue
		}

		id := r.identity(sel.AddOnID)
		addOn, err := r.tx.FindAddOn(r.ctx, id)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s (booking %s)", ErrAddOnNotFound, id, r.booking.Code)
		}
		if err != nil {
			return fmt.Errorf("find add-on %s: %w", id, err)
		}

		for _, opt := range chosen {
			if opt.Price == nil {
				r.booking.Record(model.SyncMissingAddOnOption,
					"add-on %q option %q has no price and was skipped", addOn.Name, *opt.Label)
				continue
			}
			amount := *opt.Price
			if addOn.PriceBasis == model.PricePerTicket {
				amount = amount.Mul(decimal.NewFromInt(int64(tickets)))
			}
			attach(model.NewAddOn(addOn, *opt.Label, amount))
		}
	}
	return nil
}
