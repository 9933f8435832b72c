// Package codec defines the exact bytes the oracle signs and the verifier
// re-reads: the identity's canonical text followed by a fixed-width
// decimal timestamp.
//
//	0x<64 hex digits><13 decimal digits>
//
// The timestamp is anchored to the tail of the message so decoding it does
// not depend on how the identity is encoded.
package codec

import (
	"fmt"
	"strconv"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
)

// TimestampDigits is the width of the decimal timestamp suffix.
const TimestampDigits = 13

// MaxTimestamp is the largest value that fits in TimestampDigits digits.
const MaxTimestamp models.Timestamp = 9_999_999_999_999

// Encode builds the message for identity at ts. It fails only when ts is
// outside [0, MaxTimestamp].
func Encode(identity domain.Identity, ts models.Timestamp) ([]byte, error) {
	if ts < 0 || ts > MaxTimestamp {
		return nil, fmt.Errorf("timestamp %d out of range: %w", ts, models.ErrMalformedAttestation)
	}
	msg := make([]byte, 0, len(identity.String())+TimestampDigits)
	msg = append(msg, identity.String()...)
	msg = fmt.Appendf(msg, "%0*d", TimestampDigits, int64(ts))
	return msg, nil
}

// DecodeTimestamp reads the last TimestampDigits bytes of message as a
// most-significant-first decimal number.
func DecodeTimestamp(message []byte) (models.Timestamp, error) {
	if len(message) < TimestampDigits {
		return 0, fmt.Errorf("message shorter than %d bytes: %w", TimestampDigits, models.ErrMalformedAttestation)
	}
	tail := message[len(message)-TimestampDigits:]
	var ts models.Timestamp
	pow := models.Timestamp(1)
	for i := 0; i < TimestampDigits; i++ {
		c := tail[TimestampDigits-1-i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("byte %q at offset %d from end is not a digit: %w", c, i, models.ErrMalformedAttestation)
		}
		ts += models.Timestamp(c-'0') * pow
		pow *= 10
	}
	return ts, nil
}

// DecodeIdentity parses the identity prefix, i.e. everything before the
// timestamp suffix.
func DecodeIdentity(message []byte) (domain.Identity, error) {
	if len(message) < TimestampDigits {
		return domain.Identity{}, fmt.Errorf("message shorter than %d bytes: %w", TimestampDigits, models.ErrMalformedAttestation)
	}
	id, err := domain.ParseIdentity(string(message[:len(message)-TimestampDigits]))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity prefix: %v: %w", err, models.ErrMalformedAttestation)
	}
	return id, nil
}

// Describe renders a message for logs without trusting its contents.
func Describe(message []byte) string {
	return strconv.Quote(string(message))
}
