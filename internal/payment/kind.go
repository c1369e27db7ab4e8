package payment

import "strings"

// Kind classifies how a payment method is settled. It is stored as a
// column on payment_methods and resolved once when the catalog is
// imported, never re-derived on request paths.
type Kind string

const (
	// KindQris is scan-to-pay: the admin uploads a QR image per order.
	KindQris Kind = "qris"
	// KindMinimarket is cash-at-counter: the admin uploads a payment code.
	KindMinimarket Kind = "minimarket"
	// KindCash is COD / manual settlement, handled entirely by the admin.
	KindCash Kind = "cash"
)

func (k Kind) Valid() bool {
	switch k {
	case KindQris, KindMinimarket, KindCash:
		return true
	}
	return false
}

// Classify maps a free-text method code/name onto a Kind. This is the
// legacy substring heuristic kept only for the catalog import step
// (cmd/seed); request handling reads the stored kind column instead.
func Classify(code, name string) Kind {
	s := strings.ToUpper(code + " " + name)

	switch {
	case strings.Contains(s, "MINIMARKET"),
		strings.Contains(s, "ALFA"),
		strings.Contains(s, "INDO"):
		return KindMinimarket
	case strings.Contains(s, "COD"),
		strings.Contains(s, "CASH"):
		return KindCash
	default:
		return KindQris
	}
}
