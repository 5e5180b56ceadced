package circle

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/halo/backend/internal/domain/shared"
)

// inviteAlphabet excludes visually ambiguous characters (0/O, 1/I/L)
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the fixed length of circle invite codes
const InviteCodeLength = 8

// GenerateInviteCode returns a random invite code. Uniqueness is enforced by
// the persistence layer; callers retry on collision.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	var sb strings.Builder
	sb.Grow(InviteCodeLength)
	for _, b := range buf {
		sb.WriteByte(inviteAlphabet[int(b)%len(inviteAlphabet)])
	}
	return sb.String(), nil
}

// ValidateInviteCode checks the invite code format
func ValidateInviteCode(code string) error {
	if len(code) != InviteCodeLength {
		return shared.NewDomainError("INVALID_INVITE_CODE",
			fmt.Sprintf("Invite code must be %d characters", InviteCodeLength))
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(inviteAlphabet, rune(code[i])) {
			return shared.NewDomainError("INVALID_INVITE_CODE", "Invite code contains invalid characters")
		}
	}
	return nil
}
