package circle

import (
	"context"

	"github.com/google/uuid"
)

// IdentityGate answers identity and sybil-resistance questions for a user.
// Verification itself (KYC workflow, wallet binding) happens in an external
// service; the core only consumes the answers.
type IdentityGate interface {
	// IsVerified reports whether the user's identity has been verified
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
	// UniqueToken returns the user's sybil-resistance token. The same token
	// appearing for two distinct users is a fatal integrity violation.
	UniqueToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// AssetCustody answers balance questions about a wallet. Used as a soft
// pre-check before circle creation; the chain re-validates on transfer.
type AssetCustody interface {
	// BalanceOf returns the wallet's balance of the asset in stroops
	BalanceOf(ctx context.Context, walletID, assetID string) (int64, error)
}

// TransferHandle references an unsigned value-transfer transaction built by
// the settlement service. The core never inspects its contents.
type TransferHandle struct {
	// XDR is the opaque unsigned transaction envelope
	XDR string
	// Hash identifies the transaction once submitted
	Hash string
}

// TransferBuilder builds value-transfer transactions on the settlement
// service. Building is fire-and-forget from the accounting engine's
// perspective: a failure is surfaced for retry but never rolls back state.
type TransferBuilder interface {
	// BuildTransfer builds an unsigned transfer of amount stroops of asset
	// from the circle pool to the recipient wallet
	BuildTransfer(ctx context.Context, circleID uuid.UUID, recipientUserID uuid.UUID, assetID string, amount int64) (*TransferHandle, error)
}
