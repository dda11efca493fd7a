package domain

import (
	"encoding/base32"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var numberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{6}-[A-Z2-7]{6}$`)

// NumberGenerator produces an order number for the given instant.
type NumberGenerator func(now time.Time) string

// NewNumber renders ORD-YYYYMMDD-HHMMSS-XXXXXX from the UTC instant and six random base32 characters.
func NewNumber(now time.Time) string {
	id := uuid.New()
	suffix := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(id[:4])[:6]
	return "ORD-" + now.UTC().Format("20060102-150405") + "-" + suffix
}

// IsNumber reports whether s has the order number shape.
func IsNumber(s string) bool {
	return numberPattern.MatchString(s)
}
