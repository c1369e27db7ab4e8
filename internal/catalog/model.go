package catalog

import (
	"topupin-be/internal/payment"
)

// Item is a top-up denomination (e.g. "100 Diamonds").
type Item struct {
	ID     uint
	Code   string
	Name   string
	Price  int64
	Active bool
}

// PaymentMethod is a settlement channel offered at checkout. Kind is an
// enumerated column filled in at catalog import time.
type PaymentMethod struct {
	ID     uint
	Code   string
	Name   string
	Kind   payment.Kind
	Active bool
}
