package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// InviteCodeLength is the number of characters in an invite code
const InviteCodeLength = 6

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns an uppercase alphanumeric code of length n.
func GenerateInviteCode(n int) (string, error) {
	if n <= 0 {
		n = InviteCodeLength
	}
	max := big.NewInt(int64(len(inviteAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		buf[i] = inviteAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
