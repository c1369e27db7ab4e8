package order

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const lockCookieName = "active_order"

// Lock is the cookie-based soft lock that steers a browser with an
// unresolved order back to its invoice page. It is advisory only: the
// server never blocks a placement because of it, and a cleared cookie
// simply lifts the redirect.
type Lock struct {
	secret []byte
	ttl    time.Duration
}

func NewLock(secret string, ttl time.Duration) *Lock {
	return &Lock{secret: []byte(secret), ttl: ttl}
}

type lockClaims struct {
	OrderCode string `json:"order_code"`
	jwt.RegisteredClaims
}

// Set issues the signed lock cookie pointing at code.
func (l *Lock) Set(w http.ResponseWriter, code string) {
	now := time.Now()
	claims := lockClaims{
		OrderCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		// Signing only fails on a broken key; skip the cookie rather
		// than fail the order.
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     lockCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(l.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the order code carried by a valid lock cookie, or ""
// when the cookie is absent, expired or tampered with.
func (l *Lock) Read(r *http.Request) string {
	c, err := r.Cookie(lockCookieName)
	if err != nil {
		return ""
	}
	claims := &lockClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return l.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	return claims.OrderCode
}

// Clear expires the lock cookie.
func (l *Lock) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     lockCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
