package promo

import "errors"

var (
	ErrPromoNotFound    = errors.New("promo code not found or inactive")
	ErrPromoNotStarted  = errors.New("promo has not started yet")
	ErrPromoEnded       = errors.New("promo has ended")
	ErrPromoMinSubtotal = errors.New("subtotal below promo minimum")
)
