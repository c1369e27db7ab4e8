package catalog

import "errors"

var (
	ErrItemNotFound          = errors.New("item not found or inactive")
	ErrPaymentMethodNotFound = errors.New("payment method not found or inactive")
)
