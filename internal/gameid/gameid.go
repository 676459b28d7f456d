// Package gameid generates sortable, URL-safe tournament identifiers.
//
// An identifier is a UUIDv7 re-encoded as 26 characters of Crockford
// base32. The leading bits are a millisecond timestamp, so identifiers
// created later sort later as plain strings.
package gameid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, lowercased.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// New returns a fresh identifier. It panics only if the system's
// entropy source is unusable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("gameid: " + err.Error())
	}
	return encode(id)
}

// encode re-encodes the UUID's 128 bits as 26 base32 characters,
// reading five bits per character from the top and padding the final
// character with zero bits.
func encode(id uuid.UUID) string {
	var out [26]byte
	for i := range out {
		out[i] = alphabet[window(id, i*5)]
	}
	return string(out[:])
}

func window(id uuid.UUID, offset int) byte {
	var v byte
	for pos := offset; pos < offset+5; pos++ {
		v <<= 1
		if pos < 128 && id[pos/8]&(1<<(7-pos%8)) != 0 {
			v |= 1
		}
	}
	return v
}

// Validate reports whether id has the shape New produces.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("gameid: want 26 characters, have %d", len(id))
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("gameid: invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
