package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"golang.org/x/crypto/sha3"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Address identifies an account (owner, beneficiary, donor, recipient).
// Values produced by ParseAddress are always in EIP-55 checksum form, so two
// spellings of the same account compare equal.
type Address string

// ParseAddress validates a 0x-prefixed 20-byte hex address and returns its checksummed form.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !addressPattern.MatchString(s) {
		return "", fmt.Errorf("%w: invalid account address %q", apperrors.ErrValidation, s)
	}
	return Address(checksumHex(s[2:])), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}

func checksumHex(hexPart string) string {
	lower := strings.ToLower(hexPart)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := []byte("0x" + lower)
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i+2] = c - ('a' - 'A')
		}
	}
	return string(out)
}
