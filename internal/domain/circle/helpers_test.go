package circle

import (
	"errors"
	"testing"

	"github.com/halo/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

// assertDomainErrorCode asserts err is a DomainError with the given code
func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a DomainError, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code)
}
