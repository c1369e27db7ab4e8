package order

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	codeAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRandomLen  = 10
	fallbackPrefix = "TRX"
)

// codePrefix derives the human-readable prefix from the catalog item:
// the first three alphanumeric characters of the item code, uppercased,
// falling back to the item name and then to a generic prefix.
func codePrefix(itemName, itemCode string) string {
	for _, src := range []string{itemCode, itemName} {
		var b strings.Builder
		for _, r := range src {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
				if b.Len() == 3 {
					break
				}
			}
		}
		if b.Len() == 3 {
			return strings.ToUpper(b.String())
		}
	}
	return fallbackPrefix
}

// GenerateCode produces one order code candidate, e.g. "ML2025-4K7Q9ZP2XA".
// Uniqueness is the caller's problem; this only guarantees enough entropy
// that retries are rare.
func GenerateCode(itemName, itemCode string) (string, error) {
	buf := make([]byte, codeRandomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s%d-%s", codePrefix(itemName, itemCode), time.Now().Year(), buf), nil
}
