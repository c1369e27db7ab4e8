package order

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found or already processed")
	ErrOrderExpired           = errors.New("payment window closed")
	ErrAlreadySubmitted       = errors.New("payment already submitted")
	ErrCashNotConfirmable     = errors.New("cash orders are confirmed by admin")
	ErrQrisNotUploaded        = errors.New("QRIS not yet uploaded")
	ErrPaymentCodeNotUploaded = errors.New("payment code not yet uploaded")
	ErrNotConfirmed           = errors.New("user has not confirmed payment")
	ErrAlreadyProcessed       = errors.New("order already processed, cannot cancel")
	ErrCodeSpaceExhausted     = errors.New("could not allocate a unique order code")
	ErrProofKindMismatch      = errors.New("proof does not match payment kind")
)

// FieldError reports a validation failure on a specific input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
