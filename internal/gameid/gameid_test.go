package gameid

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	t.Parallel()

	id := New()
	if len(id) != 26 {
		t.Fatalf("want 26 characters, have %d (%q)", len(id), id)
	}
	if err := Validate(id); err != nil {
		t.Errorf("fresh identifier failed validation: %v", err)
	}
}

func TestNewUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate identifier %s", id)
		}
		seen[id] = true
	}
}

func TestNewTimeSorted(t *testing.T) {
	t.Parallel()

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, New())
		time.Sleep(2 * time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("identifiers out of order: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	// The zero UUID encodes to all-zero characters, and the all-ones
	// UUID fills every 5-bit window except the padded tail.
	if got := encode(uuid.UUID{}); got != strings.Repeat("0", 26) {
		t.Errorf("zero UUID: have %q", got)
	}
	ones := uuid.UUID{}
	for i := range ones {
		ones[i] = 0xff
	}
	want := strings.Repeat("z", 25) + "w" // final window carries 3 data bits then padding
	if got := encode(ones); got != want {
		t.Errorf("all-ones UUID: have %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h5n0et5q6mt3v7ms1234abcd", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"excluded letter", "01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase", "01H5N0ET5Q6MT3V7MS1234ABCD", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestAlphabet(t *testing.T) {
	t.Parallel()

	if len(alphabet) != 32 {
		t.Fatalf("alphabet has %d characters", len(alphabet))
	}
	seen := make(map[rune]bool)
	for _, c := range alphabet {
		if seen[c] {
			t.Errorf("duplicate character %c", c)
		}
		seen[c] = true
	}
	for _, c := range "ilou" {
		if strings.ContainsRune(alphabet, c) {
			t.Errorf("alphabet must not contain %c", c)
		}
	}
}
