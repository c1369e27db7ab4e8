package utils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var whatsappRegex = regexp.MustCompile(`^(\+62|62|0)8[0-9]{7,12}$`)

// ValidWhatsappNumber reports whether the contact looks like an Indonesian
// mobile number ("08...", "62..." or "+62...").
func ValidWhatsappNumber(input string) bool {
	n := strings.TrimSpace(input)
	n = strings.ReplaceAll(n, " ", "")
	n = strings.ReplaceAll(n, "-", "")
	return whatsappRegex.MatchString(n)
}

func WriteJSON(w http.ResponseWriter, payload any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, map[string]string{"error": message}, code)
}
