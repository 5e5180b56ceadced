package circle

import "github.com/halo/backend/internal/domain/shared"

// Circle domain errors. Codes map to HTTP statuses at the interface layer.
var (
	ErrCircleNotFound        = shared.NewDomainError("CIRCLE_NOT_FOUND", "Circle not found")
	ErrNotForming            = shared.NewDomainError("CIRCLE_NOT_FORMING", "Circle is no longer accepting members")
	ErrCircleNotActive       = shared.NewDomainError("CIRCLE_NOT_ACTIVE", "Circle is not active")
	ErrCircleFull            = shared.NewDomainError("CIRCLE_FULL", "Circle is full")
	ErrAlreadyMember         = shared.NewDomainError("ALREADY_MEMBER", "Already a member of this circle")
	ErrNotMember             = shared.NewDomainError("NOT_MEMBER", "Not a member of this circle")
	ErrDuplicateContribution = shared.NewDomainError("DUPLICATE_CONTRIBUTION", "Already contributed for this period")
	ErrTooManyActiveCircles  = shared.NewDomainError("TOO_MANY_ACTIVE_CIRCLES", "Maximum number of active circles reached")
	ErrNoRecipient           = shared.NewDomainError("NO_RECIPIENT", "No membership holds the payout position for this period")
	ErrDuplicateIdentity     = shared.NewDomainError("DUPLICATE_IDENTITY", "Identity token is already bound to another user")
	ErrIdentityNotVerified   = shared.NewDomainError("IDENTITY_NOT_VERIFIED", "Identity verification required")
	ErrInsufficientBalance   = shared.NewDomainError("INSUFFICIENT_BALANCE", "Insufficient token balance for the required collateral")
)
