package promo

import "time"

type PromoType string

const (
	TypeAmount  PromoType = "amount"
	TypePercent PromoType = "percent"
)

// Promo is a discount rule applied at order placement time.
type Promo struct {
	ID   uint
	Code string
	Type PromoType

	// Value is a rupiah amount for TypeAmount, a percentage for TypePercent.
	Value int64

	// MinSubtotal is the smallest subtotal the promo applies to.
	MinSubtotal int64

	// MaxDiscount caps percent promos; 0 means uncapped.
	MaxDiscount int64

	// Optional active window. Nil means unbounded on that side.
	StartsAt *time.Time
	EndsAt   *time.Time

	Active bool
}

// IsRunning reports whether the promo's schedule covers now.
func (p *Promo) IsRunning(now time.Time) bool {
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}

// Discount computes the discount for a subtotal. The result is always in
// [0, subtotal]; eligibility (schedule, min subtotal) is checked by the
// caller first.
func (p *Promo) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}

	var d int64
	switch p.Type {
	case TypeAmount:
		d = p.Value
	case TypePercent:
		d = subtotal * p.Value / 100
		if p.MaxDiscount > 0 && d > p.MaxDiscount {
			d = p.MaxDiscount
		}
	default:
		return 0
	}

	if d < 0 {
		return 0
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}
