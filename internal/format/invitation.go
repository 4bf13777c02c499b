package format

import (
	"crypto/rand"
	"math/big"
)

// InvitationAlphabet has 32 characters and leaves out I, O, 0 and 1.
const InvitationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InvitationCodeLength is the default code length.
const InvitationCodeLength = 6

// NewInvitationCode returns a code of the default length.
// Uniqueness is enforced by the store, not here.
func NewInvitationCode() (string, error) {
	return InvitationCode(InvitationCodeLength)
}

// InvitationCode returns n characters drawn uniformly from InvitationAlphabet.
func InvitationCode(n int) (string, error) {
	max := big.NewInt(int64(len(InvitationAlphabet)))
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = InvitationAlphabet[idx.Int64()]
	}
	return string(code), nil
}
