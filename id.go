package dialogue

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
)

// idCounter is process-wide and advanced atomically, so id generation is
// safe for concurrent callers without any graph lock.
var idCounter atomic.Uint64

// GenerateID returns a short string id unique for the lifetime of the
// process: millisecond timestamp, a 24-bit random value, and a monotonic
// counter, hex-encoded. Not cryptographically secure and not guaranteed
// unique across processes.
func GenerateID() string {
	ts := time.Now().UnixMilli()
	counter := idCounter.Add(1) - 1
	random := rand.Uint64() & 0xFFFFFF
	return fmt.Sprintf("%x-%x-%x", ts, random, counter)
}

// CompositeID is a 128-bit externally-facing identifier carried by
// characters, stored as two 64-bit halves.
type CompositeID struct {
	High uint64 `json:"high"`
	Low  uint64 `json:"low"`
}

// NewCompositeID generates a fresh composite id. The high half mixes a
// millisecond timestamp with a random value, the low half mixes the
// monotonic counter with a random value.
func NewCompositeID() CompositeID {
	ts := uint64(time.Now().UnixMilli())
	counter := idCounter.Add(1) - 1
	random := rand.Uint64()
	return CompositeID{
		High: ts ^ random,
		Low:  counter<<32 | random&0xFFFFFFFF,
	}
}

// Hex renders the id as a 0x-prefixed 32-hex-digit string.
func (id CompositeID) Hex() string {
	return fmt.Sprintf("0x%016x%016x", id.High, id.Low)
}

// IsNull reports whether both halves are zero.
func (id CompositeID) IsNull() bool {
	return id.High == 0 && id.Low == 0
}

// ParseCompositeID parses the textual form produced by Hex. The 0x prefix
// is optional; anything other than exactly 32 hex digits is rejected.
func ParseCompositeID(s string) (CompositeID, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 32 {
		return CompositeID{}, fmt.Errorf("dialogue: composite id must be 32 hex digits, got %d", len(s))
	}

	high, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return CompositeID{}, fmt.Errorf("dialogue: parse composite id: %w", err)
	}
	low, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return CompositeID{}, fmt.Errorf("dialogue: parse composite id: %w", err)
	}

	return CompositeID{High: high, Low: low}, nil
}

// ToTechnicalName derives an identifier-safe name from free-form display
// text: alphanumerics are kept, runs of whitespace/hyphen/underscore
// collapse into a single interior underscore, a leading digit gets an
// underscore prefix, and the result is capped at 64 characters.
func ToTechnicalName(display string) string {
	var b strings.Builder
	prevUnderscore := false

	for _, r := range display {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevUnderscore = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	result := strings.TrimSuffix(b.String(), "_")

	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = "_" + result
	}

	if runes := []rune(result); len(runes) > 64 {
		result = string(runes[:64])
	}

	return result
}

// shortID returns the first n characters of an id for readable derived names.
func shortID(id string, n int) string {
	if len(id) < n {
		return id
	}
	return id[:n]
}
