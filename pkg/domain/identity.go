package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	dErrors "proofgate/pkg/domain-errors"
)

// IdentityLen is the size in bytes of an account identity.
const IdentityLen = 32

// identityTextLen is the length of the canonical "0x"-prefixed hex form.
const identityTextLen = 2 + 2*IdentityLen

// ed25519Flag is the signature-scheme byte prepended before hashing a public
// key into an identity.
const ed25519Flag = 0x00

// Identity is the principal a gated call is attributed to: a 32-byte account
// address. The zero value is never a valid identity.
type Identity [IdentityLen]byte

// ParseIdentity parses the canonical text form: "0x" followed by 64 hex digits.
// Hex digits are accepted in either case; String always renders lowercase.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	if len(s) != identityTextLen || !strings.HasPrefix(s, "0x") {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be 0x followed by 64 hex digits")
	}
	var id Identity
	if _, err := hex.Decode(id[:], []byte(s[2:])); err != nil {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be 0x followed by 64 hex digits")
	}
	if id.IsZero() {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must not be zero")
	}
	return id, nil
}

// MustParseIdentity is ParseIdentity for constants and tests.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// DeriveIdentity computes the identity owned by an Ed25519 public key:
// BLAKE2b-256 over the scheme flag followed by the key bytes.
func DeriveIdentity(publicKey []byte) Identity {
	buf := make([]byte, 0, 1+len(publicKey))
	buf = append(buf, ed25519Flag)
	buf = append(buf, publicKey...)
	return Identity(blake2b.Sum256(buf))
}

func (i Identity) String() string {
	return "0x" + hex.EncodeToString(i[:])
}

func (i Identity) IsZero() bool {
	return i == Identity{}
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
