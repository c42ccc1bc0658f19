package agenterr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("wrapping: %w", Reject("period %s is locked", "P3"))
	require.True(t, Is(err, KindConstraintReject))
	require.False(t, Is(err, KindInvariantViolation))
}

func TestFatalOnlyForInvariantViolation(t *testing.T) {
	require.True(t, Fatal(Invariant("queues not disjoint")))
	require.False(t, Fatal(Invalid("unknown order %d", 42)))
	require.False(t, Fatal(Reject("insufficient capacity")))
	require.False(t, Fatal(LockContention("deadline exceeded")))
}

func TestErrorMessageIncludesKind(t *testing.T) {
	err := Invalid("unknown period %q", "P9")
	require.Equal(t, `invalid_message: unknown period "P9"`, err.Error())
}

func TestIsFalseForPlainError(t *testing.T) {
	require.False(t, Is(fmt.Errorf("plain"), KindInvalidMessage))
}
