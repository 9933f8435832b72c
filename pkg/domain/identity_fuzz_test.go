package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseIdentity checks that parsing never panics and that every accepted
// input round-trips through String.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add(sampleIdentity)
	f.Add("0x")
	f.Add("0x0000000000000000000000000000000000000000000000000000000000000000")
	f.Add("'; DROP TABLE attestations;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(sampleIdentity + "\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseIdentity(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseIdentity(id.String())
		if err != nil {
			t.Errorf("valid identity failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed identity value")
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
		if id.IsZero() {
			t.Error("zero identity was accepted")
		}
	})
}
