// Package validate is the single source of truth for per-field input rules.
// Every entry point (admin conversation steps, REST writes, maintenance
// code) goes through these helpers instead of re-implementing them ad hoc.
package validate

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validation errors surfaced to admin flows as re-prompt messages.
var (
	ErrNotURL         = errors.New("value must start with http:// or https://")
	ErrNotInteger     = errors.New("value must be an integer")
	ErrEmpty          = errors.New("value must not be empty")
	ErrPlayerRange    = errors.New("player count out of range")
	ErrMaxPlayerRange = errors.New("max players must be between 1 and 100")
)

// skipTokens map an optional field to absent, case-insensitively.
var skipTokens = map[string]struct{}{
	"없음":   {},
	"skip": {},
	"스킵":   {},
	"-":    {},
}

// IsSkip reports whether the input is one of the skip sentinels used to
// leave an optional field empty.
func IsSkip(s string) bool {
	_, ok := skipTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Optional trims the input and maps skip sentinels to nil.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || IsSkip(s) {
		return nil
	}
	return &s
}

// Required trims the input and rejects empty strings.
func Required(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

// HTTPURL validates that the input starts with http. The original mini-app
// accepts both http:// and https:// and checks only the prefix.
func HTTPURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http") {
		return "", ErrNotURL
	}
	return s, nil
}

// OptionalHTTPURL maps skip sentinels to nil, otherwise applies HTTPURL.
func OptionalHTTPURL(s string) (*string, error) {
	if v := Optional(s); v == nil {
		return nil, nil
	}
	u, err := HTTPURL(s)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IntField parses an integer field. Callers decide the failure policy:
// re-prompt (coupon amount, validity days, player counts) or fall back to a
// default (banner order via IntOrDefault).
func IntField(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// IntOrDefault parses an integer, returning def on any parse failure.
func IntOrDefault(s string, def int) int {
	n, err := IntField(s)
	if err != nil {
		return def
	}
	return n
}

// PlayerCount checks 0 <= n <= max for the room being edited.
func PlayerCount(n, max int) error {
	if n < 0 || n > max {
		return fmt.Errorf("%w: must be between 0 and %d", ErrPlayerRange, max)
	}
	return nil
}

// MaxPlayers checks 1 <= n <= 100.
func MaxPlayers(n int) error {
	if n < 1 || n > 100 {
		return ErrMaxPlayerRange
	}
	return nil
}

// ContactHandle normalizes a Telegram contact handle, stripping a leading @.
func ContactHandle(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// UserIDList parses a comma- or whitespace-separated list of Telegram user
// ids. Duplicates are kept in order of first appearance.
func UserIDList(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[int64]struct{}, len(fields))
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotInteger, f)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

const couponCodeLen = 10

const couponCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CouponCode generates a fresh random 10-character uppercase alphanumeric
// coupon code.
func CouponCode() string {
	buf := make([]byte, couponCodeLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("coupon code generation: %v", err))
	}
	for i, b := range buf {
		buf[i] = couponCodeAlphabet[int(b)%len(couponCodeAlphabet)]
	}
	return string(buf)
}
